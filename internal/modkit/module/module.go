// Package module holds the module contract and the process port registry
package module

import phttp "speakertag/internal/platform/net/http"

// Module mounts routes and exports ports for other modules. Service modules mount nothing.
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
