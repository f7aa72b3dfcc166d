// Package service wires the MCP protocol to the simulator's tool handlers.
//
// It is the transport layer: the package runs MCP over stdio and delegates
// tool semantics to the domain package. Registration is typed so a handler
// signature mismatch fails at startup instead of at call time.
package service
