// Package layer wraps the host's layer and image commands: the layer stack,
// the current layer's properties, and undo grouping.
//
// Layer indexes are 1-based, bottom first, as the host reports them.
package layer
