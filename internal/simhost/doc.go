// Package simhost is an in-process stand-in for the paint host.
//
// It speaks the same framed protocol as the real host, runs commands one at
// a time in arrival order, and keeps just enough state to answer queries:
// tool properties echo their last set value, and a small layer stack backs
// the layer and image commands. Tests use its journal and fault hooks
// (silence, delays, reply filters) to exercise the dispatcher.
package simhost
