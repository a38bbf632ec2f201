// Package docs holds the OpenAPI description served at /api/docs
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "openapi": "3.0.3",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "paths": {
        "/meta/health": {"get": {"tags": ["Meta"], "summary": "Health check", "responses": {"200": {"description": "ok"}}}},
        "/meta/ready": {"get": {"tags": ["Meta"], "summary": "Readiness probe with store checks", "responses": {"200": {"description": "ok"}}}},
        "/meta/version": {"get": {"tags": ["Meta"], "summary": "Build and rule pack version", "responses": {"200": {"description": "ok"}}}},
        "/meta/patterns": {"get": {"tags": ["Meta"], "summary": "Speaker rule table summary", "responses": {"200": {"description": "ok"}}}},
        "/transcripts": {"get": {"tags": ["Transcripts"], "summary": "List transcripts with tagged line counts", "responses": {"200": {"description": "ok"}}}},
        "/transcripts/{id}": {"get": {"tags": ["Transcripts"], "summary": "Get one transcript", "parameters": [{"$ref": "#/components/parameters/TranscriptID"}], "responses": {"200": {"description": "ok"}, "404": {"description": "not found"}}}},
        "/transcripts/{id}/lines": {"get": {"tags": ["Transcripts"], "summary": "Page through lines", "parameters": [
            {"$ref": "#/components/parameters/TranscriptID"},
            {"name": "page", "in": "query", "schema": {"type": "integer", "minimum": 1}},
            {"name": "per_page", "in": "query", "schema": {"type": "integer", "minimum": 1}},
            {"name": "search", "in": "query", "schema": {"type": "string"}}
        ], "responses": {"200": {"description": "ok"}}}},
        "/transcripts/{id}/lines/{lineID}": {"patch": {"tags": ["Tagging"], "summary": "Set or clear the speaker of one line", "parameters": [
            {"$ref": "#/components/parameters/TranscriptID"},
            {"name": "lineID", "in": "path", "required": true, "schema": {"type": "integer"}}
        ], "requestBody": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/TagInput"}}}}, "responses": {"200": {"description": "ok"}}}},
        "/transcripts/{id}/lines/bulk": {"patch": {"tags": ["Tagging"], "summary": "Tag many lines at once", "parameters": [{"$ref": "#/components/parameters/TranscriptID"}],
            "requestBody": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/BulkTagInput"}}}}, "responses": {"200": {"description": "ok"}}}},
        "/transcripts/{id}/speakers": {"get": {"tags": ["Speakers"], "summary": "Speakers of one transcript", "parameters": [{"$ref": "#/components/parameters/TranscriptID"}], "responses": {"200": {"description": "ok"}}}},
        "/transcripts/{id}/stats": {"get": {"tags": ["Transcripts"], "summary": "Tagging progress", "parameters": [{"$ref": "#/components/parameters/TranscriptID"}], "responses": {"200": {"description": "ok"}}}},
        "/transcripts/{id}/export": {"get": {"tags": ["Transcripts"], "summary": "Export tagged lines", "parameters": [
            {"$ref": "#/components/parameters/TranscriptID"},
            {"name": "format", "in": "query", "schema": {"type": "string", "enum": ["txt", "json", "srt", "csv"]}}
        ], "responses": {"200": {"description": "file"}}}},
        "/transcripts/{id}/attribution": {"post": {"tags": ["Attribution"], "summary": "Run speaker attribution", "parameters": [{"$ref": "#/components/parameters/TranscriptID"}],
            "requestBody": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/RunInput"}}}}, "responses": {"200": {"description": "ok"}}}},
        "/transcripts/{id}/attribution/report": {"get": {"tags": ["Attribution"], "summary": "Quality report of a dry run", "parameters": [
            {"$ref": "#/components/parameters/TranscriptID"},
            {"name": "mode", "in": "query", "schema": {"type": "string", "enum": ["line", "segment"]}}
        ], "responses": {"200": {"description": "text report"}}}},
        "/transcripts/{id}/segments": {"get": {"tags": ["Attribution"], "summary": "Persisted segments of the last run", "parameters": [{"$ref": "#/components/parameters/TranscriptID"}], "responses": {"200": {"description": "ok"}}}},
        "/speakers": {"get": {"tags": ["Speakers"], "summary": "Speakers across all transcripts", "responses": {"200": {"description": "ok"}}}},
        "/speakers/suggest": {"get": {"tags": ["Speakers"], "summary": "Suggest known speaker spellings", "parameters": [
            {"name": "q", "in": "query", "required": true, "schema": {"type": "string"}},
            {"name": "limit", "in": "query", "schema": {"type": "integer"}}
        ], "responses": {"200": {"description": "ok"}}}}
    },
    "components": {
        "parameters": {
            "TranscriptID": {"name": "id", "in": "path", "required": true, "schema": {"type": "integer"}}
        },
        "schemas": {
            "TagInput": {"type": "object", "properties": {"speaker": {"type": "string"}, "tagged_by": {"type": "string"}}},
            "BulkTagInput": {"type": "object", "required": ["line_ids"], "properties": {
                "line_ids": {"type": "array", "items": {"type": "integer"}},
                "speaker": {"type": "string"},
                "tagged_by": {"type": "string"}
            }},
            "RunInput": {"type": "object", "properties": {"mode": {"type": "string", "enum": ["line", "segment"]}, "dry_run": {"type": "boolean"}}}
        }
    }
}`

// SwaggerInfo holds the exported API info so callers can adjust it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/api/v1",
	Title:            "speakertag API",
	Description:      "Speaker attribution and tagging for parliamentary transcripts",
	InfoInstanceName: "api",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
