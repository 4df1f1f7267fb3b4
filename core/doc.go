// Package core defines the shared data model of the agentrun engine:
// conversation messages, tool calls, streaming lifecycle events and the
// final run result. It is a leaf package with no dependencies on the rest
// of the module so every other package can import it freely.
package core
