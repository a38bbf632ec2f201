// Package modkit builds and mounts service and api modules
package modkit

import "speakertag/internal/modkit/module"

// Module is module.Module, re-exported for constructors
type Module = module.Module
