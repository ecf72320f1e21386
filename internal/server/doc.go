// Package server implements the MCP (Model Context Protocol) server for the
// photo editor.
//
// The server speaks JSON-RPC 2.0 over stdio, one request per line. Each
// editor_open call creates an editing session; later tool calls address it
// by session_id. Sessions hold only parameters and a downsampled preview
// buffer, so the source photo is never modified.
//
// # Protocol
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Session Lifecycle:
//   - editor_open: Load a photo from a path, URL or inline base64
//   - editor_state: Current adjustments, preset, crop and zoom
//   - editor_reset: Return every parameter to default
//   - editor_close: Discard the session
//
// Adjustments and Presets:
//   - editor_adjust: Set manual adjustment fields
//   - editor_preset: Toggle a preset look
//   - editor_preset_intensity: Scale the selected preset
//   - presets_list: Enumerate the preset catalog
//
// Geometry:
//   - editor_rotate, editor_fine_rotate, editor_flip
//   - editor_aspect_ratio: Lock the crop box to a ratio
//   - editor_crop_pointer: Drag and resize the crop box
//   - editor_zoom: Preview zoom, never affects pixels
//
// Rendering:
//   - editor_preview: Render the preview buffer
//   - editor_export: Render and encode at full resolution
//   - editor_sample_color: Color at a point before and after adjustments
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with
// code -32000 and the Go error string in data. A failed tool call leaves
// the session usable.
//
// # Usage
//
//	srv := server.New(server.WithConfig(cfg), server.WithLogger(logger))
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
