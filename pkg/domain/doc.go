// Package domain contains the core model of stepmill: the state machine
// definition, the per-state fields, the execution outcome and the error
// taxonomy. It is dependency-free so that adapters and the runtime can share
// it without cycles.
package domain
