// Package domain maps MCP tool calls onto the simulator.
//
// Each tool is a typed input/output pair plus a handler:
// - simulation_run executes a bounded in-process simulation,
// - expected_score evaluates the rating model for a hypothetical pairing,
// - run_list and run_get read the archive.
//
// Handlers own input defaulting and caps; persistence and telemetry stay
// behind the storage interfaces so a server without an archive still serves
// the pure tools.
package domain
