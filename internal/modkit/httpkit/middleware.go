package httpkit

import (
	"net/http"

	"speakertag/internal/platform/net/middleware"
)

// HeartbeatPath answers load balancer probes before routing
const HeartbeatPath = "/api/v1/ping"

// StackOptions tunes CommonStack. Attribution of a long session can run close to the 60s default timeout.
type StackOptions = middleware.StackOptions

// CommonStack is the middleware every versioned route runs behind, with the heartbeat on
func CommonStack(opt StackOptions) []func(http.Handler) http.Handler {
	if opt.Heartbeat == "" {
		opt.Heartbeat = HeartbeatPath
	}
	return middleware.Stack(opt)
}
