package bind

import (
	"strings"
	"unicode/utf8"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// maxSpeakerRunes bounds a stored speaker name
const maxSpeakerRunes = 255

// rule is a validation tag with its english message. A nil fn overrides
// only the message of a builtin tag. {1} in msg is the tag parameter.
type rule struct {
	tag string
	msg string
	fn  validator.Func
}

var rules = []rule{
	{"min", "{0} must be at least {1}", nil},
	{"max", "{0} must be at most {1}", nil},
	{"speaker", "{0} must be a single line of at most 255 characters", validSpeaker},
	{"attribution_mode", "{0} must be one of [line segment]", oneOfFold("line", "segment")},
	{"export_format", "{0} must be one of [txt json jsonl csv srt]", oneOfFold("txt", "json", "jsonl", "csv", "srt")},
}

// validSpeaker accepts an empty value, which clears a tag
func validSpeaker(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	return utf8.ValidString(s) && !strings.ContainsAny(s, "\r\n") && utf8.RuneCountInString(s) <= maxSpeakerRunes
}

func oneOfFold(allowed ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		for _, a := range allowed {
			if strings.EqualFold(s, a) {
				return true
			}
		}
		return false
	}
}

func registerRules(v *validator.Validate, trans ut.Translator) {
	for _, r := range rules {
		if r.fn != nil {
			_ = v.RegisterValidation(r.tag, r.fn)
		}
		withParam := strings.Contains(r.msg, "{1}")
		_ = v.RegisterTranslation(r.tag, trans,
			func(t ut.Translator) error { return t.Add(r.tag, r.msg, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				params := []string{fe.Field()}
				if withParam {
					params = append(params, fe.Param())
				}
				msg, _ := t.T(r.tag, params...)
				return msg
			},
		)
	}
}
