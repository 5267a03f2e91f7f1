// Package observability provides ready-made Prometheus instrumentation for
// the engine's lifecycle hooks. It is optional: the interpreter core emits
// plain events and never depends on this package.
package observability
