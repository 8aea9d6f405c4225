// Package server implements the MCP (Model Context Protocol) server for dental
// cyst analysis tools.
//
// This package provides a JSON-RPC 2.0 server that exposes lesion metrics,
// root-overlap scoring, lesion redaction and overlay rendering through the
// MCP protocol.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Measurement:
//   - cyst_analyze_lesion: Per-lesion area, perimeter, centroid and diameter
//   - cyst_score_roots: Per-tooth overlap, root overlap and severity
//   - cyst_report: Plain-text involvement report
//
// Image output:
//   - cyst_redact: Remove the lesion (interpolation, blur or color fill)
//   - cyst_overlay: Severity-colored tooth outlines with labels
//
// Task state:
//   - task_status: State of an earlier call
//
// # Tasks
//
// Each cyst_* call is recorded in a taskstore.Store under a fresh task id,
// returned alongside the result. Image payloads are not stored; their task
// result keeps only dimensions and output path.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: the analysis error record (error_code, message, operation)
//     for engine failures, otherwise the Go error string
//
// # Usage
//
//	srv := server.New(cfg, tracker, logger)
//	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil {
//	    logger.Fatal("server stopped", zap.Error(err))
//	}
package server
