package module

import "sync"

// registry maps module name to its ports for lookups made after wiring
var registry sync.Map

// Register stores ports under name, replacing any earlier entry
func Register(name string, ports any) { registry.Store(name, ports) }

// PortsAs loads the ports stored under name as a T
func PortsAs[T any](name string) (T, bool) {
	v, ok := registry.Load(name)
	if !ok {
		var zero T
		return zero, false
	}
	out, ok := v.(T)
	return out, ok
}

// Reset empties the registry
func Reset() { registry.Clear() }
