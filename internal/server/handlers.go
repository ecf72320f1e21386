package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ironsheep/photo-editor-mcp/internal/adjust"
	"github.com/ironsheep/photo-editor-mcp/internal/crop"
	"github.com/ironsheep/photo-editor-mcp/internal/editor"
	"github.com/ironsheep/photo-editor-mcp/internal/imaging"
	"github.com/ironsheep/photo-editor-mcp/internal/preset"
	"github.com/ironsheep/photo-editor-mcp/internal/preview"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "editor_open", "editor_adjust").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
// The session the tool addressed stays open.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("Server: tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Session lifecycle
	case "editor_open":
		return s.handleEditorOpen(ctx, args)
	case "editor_state":
		return s.handleEditorState(args)
	case "editor_reset":
		return s.handleEditorReset(args)
	case "editor_close":
		return s.handleEditorClose(args)

	// Adjustments and presets
	case "editor_adjust":
		return s.handleEditorAdjust(args)
	case "editor_preset":
		return s.handleEditorPreset(args)
	case "editor_preset_intensity":
		return s.handleEditorPresetIntensity(args)
	case "presets_list":
		return s.handlePresetsList(args)

	// Geometry
	case "editor_rotate":
		return s.handleEditorRotate(args)
	case "editor_fine_rotate":
		return s.handleEditorFineRotate(args)
	case "editor_flip":
		return s.handleEditorFlip(args)
	case "editor_aspect_ratio":
		return s.handleEditorAspectRatio(args)
	case "editor_crop_pointer":
		return s.handleEditorCropPointer(args)
	case "editor_zoom":
		return s.handleEditorZoom(args)

	// Rendering
	case "editor_preview":
		return s.handleEditorPreview(ctx, args)
	case "editor_export":
		return s.handleEditorExport(ctx, args)
	case "editor_sample_color":
		return s.handleEditorSampleColor(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

// sessionFor decodes args into dst, which must embed sessionArgs, and
// returns the addressed session.
func (s *Server) sessionFor(args json.RawMessage, dst interface{ id() string }) (*openSession, error) {
	if err := json.Unmarshal(args, dst); err != nil {
		return nil, err
	}
	return s.session(dst.id())
}

func (a sessionArgs) id() string { return a.SessionID }

// === Session Lifecycle Handlers ===

type editorOpenArgs struct {
	Source      string `json:"source"`
	DataBase64  string `json:"data_base64"`
	Name        string `json:"name"`
	OriginalRef string `json:"original_ref"`
}

func (s *Server) handleEditorOpen(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a editorOpenArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	var src imaging.Source
	switch {
	case a.DataBase64 != "":
		data, err := base64.StdEncoding.DecodeString(a.DataBase64)
		if err != nil {
			return nil, fmt.Errorf("invalid data_base64: %w", err)
		}
		src = imaging.BytesSource(a.Name, data)
	case a.Source != "":
		src = imaging.PathSource(a.Source)
	default:
		return nil, fmt.Errorf("either source or data_base64 is required")
	}

	sess := editor.NewSession(
		editor.WithConfig(s.cfg),
		editor.WithSourceCache(s.sources),
		editor.WithMetrics(s.metrics),
		editor.WithLogger(s.logger),
		editor.WithOriginalRef(a.OriginalRef),
	)
	if _, err := sess.Load(ctx, src); err != nil {
		_ = sess.Close()
		return nil, err
	}

	id := s.openSessionFor(sess)
	st, err := sess.State()
	if err != nil {
		return nil, err
	}
	s.logger.Info("Server: session opened", "session", id, "source", src.Ref())
	return map[string]interface{}{
		"session_id": id,
		"state":      st,
	}, nil
}

type editorStateArgs struct {
	sessionArgs
	IncludeRecipe bool `json:"include_recipe"`
}

func (s *Server) handleEditorState(args json.RawMessage) (interface{}, error) {
	var a editorStateArgs
	sess, err := s.sessionFor(args, &a)
	if err != nil {
		return nil, err
	}
	st, err := sess.State()
	if err != nil {
		return nil, err
	}
	if !a.IncludeRecipe {
		return st, nil
	}
	r, err := sess.Recipe()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"state":  st,
		"recipe": r,
	}, nil
}

func (s *Server) handleEditorReset(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	sess, err := s.sessionFor(args, &a)
	if err != nil {
		return nil, err
	}
	if err := sess.Reset(); err != nil {
		return nil, err
	}
	return sess.State()
}

func (s *Server) handleEditorClose(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.closeSession(a.SessionID); err != nil {
		return nil, err
	}
	s.logger.Info("Server: session closed", "session", a.SessionID)
	return map[string]interface{}{
		"session_id": a.SessionID,
		"closed":     true,
	}, nil
}

// === Adjustment and Preset Handlers ===

type editorAdjustArgs struct {
	sessionArgs
	Adjustments map[string]float64 `json:"adjustments"`
}

func (s *Server) handleEditorAdjust(args json.RawMessage) (interface{}, error) {
	var a editorAdjustArgs
	sess, err := s.sessionFor(args, &a)
	if err != nil {
		return nil, err
	}
	if len(a.Adjustments) == 0 {
		return nil, fmt.Errorf("adjustments must name at least one field")
	}

	values := make(map[adjust.Field]float64, len(a.Adjustments))
	for k, v := range a.Adjustments {
		f, err := adjust.ParseField(k)
		if err != nil {
			return nil, err
		}
		values[f] = v
	}
	if err := sess.SetAdjustments(values); err != nil {
		return nil, err
	}

	user := sess.Adjustments()
	stored := make(map[adjust.Field]float64, len(values))
	for f := range values {
		stored[f] = user.Get(f)
	}
	return map[string]interface{}{
		"stored":    stored,
		"effective": sess.Effective().Map(),
	}, nil
}

type editorPresetArgs struct {
	sessionArgs
	PresetID string `json:"preset_id"`
}

func (s *Server) handleEditorPreset(args json.RawMessage) (interface{}, error) {
	var a editorPresetArgs
	sess, err := s.sessionFor(args, &a)
	if err != nil {
		return nil, err
	}
	sel, err := sess.SelectPreset(a.PresetID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"preset":    sel,
		"selected":  sel.Active(),
		"effective": sess.Effective().Map(),
	}, nil
}

type editorPresetIntensityArgs struct {
	sessionArgs
	Intensity float64 `json:"intensity"`
}

func (s *Server) handleEditorPresetIntensity(args json.RawMessage) (interface{}, error) {
	var a editorPresetIntensityArgs
	sess, err := s.sessionFor(args, &a)
	if err != nil {
		return nil, err
	}
	v, err := sess.SetPresetIntensity(a.Intensity)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"intensity": v,
		"effective": sess.Effective().Map(),
	}, nil
}

type presetsListArgs struct {
	Category string `json:"category"`
}

type presetEntry struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Category  preset.Category    `json:"category"`
	Overrides map[string]float64 `json:"overrides"`
	Swatch    preset.Swatch      `json:"swatch"`
}

func (s *Server) handlePresetsList(args json.RawMessage) (interface{}, error) {
	var a presetsListArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	list := preset.All()
	if a.Category != "" {
		c, ok := preset.ParseCategory(a.Category)
		if !ok {
			return nil, fmt.Errorf("unknown category: %s", a.Category)
		}
		list = preset.ByCategory(c)
	}

	entries := make([]presetEntry, 0, len(list))
	for _, p := range list {
		overrides := make(map[string]float64, len(p.Overrides))
		for f, v := range p.Overrides {
			overrides[string(f)] = v
		}
		entries = append(entries, presetEntry{
			ID:        p.ID,
			Name:      p.Name,
			Category:  p.Category,
			Overrides: overrides,
			Swatch:    p.Swatch(),
		})
	}
	return map[string]interface{}{
		"count":      len(entries),
		"categories": preset.Categories(),
		"presets":    entries,
	}, nil
}

// === Geometry Handlers ===

type editorRotateArgs struct {
	sessionArgs
	Direction string `json:"direction"`
	Steps     int    `json:"steps"`
}

func (s *Server) handleEditorRotate(args json.RawMessage) (interface{}, error) {
	var a editorRotateArgs
	sess, err := s.sessionFor(args, &a)
	if err != nil {
		return nil, err
	}
	if a.Steps == 0 {
		a.Steps = 1
	}
	switch strings.ToLower(a.Direction) {
	case "", "cw", "clockwise":
	case "ccw", "counterclockwise":
		a.Steps = -a.Steps
	default:
		return nil, fmt.Errorf("invalid direction: %s (use cw or ccw)", a.Direction)
	}
	if err := sess.RotateQuarter(a.Steps); err != nil {
		return nil, err
	}
	return cropResult(sess.CropBox()), nil
}

type editorFineRotateArgs struct {
	sessionArgs
	Degrees float64 `json:"degrees"`
}

func (s *Server) handleEditorFineRotate(args json.RawMessage) (interface{}, error) {
	var a editorFineRotateArgs
	sess, err := s.sessionFor(args, &a)
	if err != nil {
		return nil, err
	}
	if _, err := sess.SetFineRotation(a.Degrees); err != nil {
		return nil, err
	}
	return cropResult(sess.CropBox()), nil
}

type editorFlipArgs struct {
	sessionArgs
	Axis string `json:"axis"`
}

func (s *Server) handleEditorFlip(args json.RawMessage) (interface{}, error) {
	var a editorFlipArgs
	sess, err := s.sessionFor(args, &a)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(a.Axis) {
	case "horizontal", "h":
		err = sess.FlipHorizontal()
	case "vertical", "v":
		err = sess.FlipVertical()
	default:
		return nil, fmt.Errorf("invalid axis: %s (use horizontal or vertical)", a.Axis)
	}
	if err != nil {
		return nil, err
	}
	return cropResult(sess.CropBox()), nil
}

type editorAspectRatioArgs struct {
	sessionArgs
	Ratio string `json:"ratio"`
}

func (s *Server) handleEditorAspectRatio(args json.RawMessage) (interface{}, error) {
	var a editorAspectRatioArgs
	sess, err := s.sessionFor(args, &a)
	if err != nil {
		return nil, err
	}
	if err := sess.SelectAspectRatio(a.Ratio); err != nil {
		return nil, err
	}
	return cropResult(sess.CropBox()), nil
}

type editorCropPointerArgs struct {
	sessionArgs
	Action string  `json:"action"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

func (s *Server) handleEditorCropPointer(args json.RawMessage) (interface{}, error) {
	var a editorCropPointerArgs
	sess, err := s.sessionFor(args, &a)
	if err != nil {
		return nil, err
	}

	p := crop.Point{X: a.X, Y: a.Y}
	var handled bool
	switch a.Action {
	case "down":
		handled, err = sess.PointerDown(p)
	case "move":
		handled, err = sess.PointerMove(p)
	case "up":
		err = sess.PointerUp()
	case "control_down":
		err = sess.ControlDown()
	default:
		return nil, fmt.Errorf("invalid action: %s (use down, move, up or control_down)", a.Action)
	}
	if err != nil {
		return nil, err
	}

	st, err := sess.State()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"handled":    handled,
		"crop":       st.Crop,
		"crop_state": st.CropState,
		"capture":    st.Capture,
	}, nil
}

type editorZoomArgs struct {
	sessionArgs
	Zoom  *float64 `json:"zoom"`
	Steps int      `json:"steps"`
}

func (s *Server) handleEditorZoom(args json.RawMessage) (interface{}, error) {
	var a editorZoomArgs
	sess, err := s.sessionFor(args, &a)
	if err != nil {
		return nil, err
	}

	var z float64
	if a.Zoom != nil {
		z, err = sess.SetZoom(*a.Zoom)
	} else {
		z, err = sess.StepZoom(a.Steps)
	}
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"zoom":    z,
		"percent": int(z*100 + 0.5),
	}, nil
}

func cropResult(b crop.Box) map[string]interface{} {
	return map[string]interface{}{
		"crop":     b,
		"rotation": b.Rotation(),
	}
}

// === Rendering Handlers ===

type editorPreviewArgs struct {
	sessionArgs
	ApplyCrop *bool   `json:"apply_crop"`
	Overlay   bool    `json:"overlay"`
	Format    string  `json:"format"`
	Quality   float64 `json:"quality"`
}

func (s *Server) handleEditorPreview(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a editorPreviewArgs
	sess, err := s.sessionFor(args, &a)
	if err != nil {
		return nil, err
	}
	applyCrop := (a.ApplyCrop == nil || *a.ApplyCrop) && !a.Overlay
	if a.Format == "" {
		a.Format = "png"
	}
	if a.Quality == 0 {
		a.Quality = s.cfg.Export.Quality
	}
	f, err := imaging.ParseFormat(a.Format)
	if err != nil {
		return nil, err
	}

	var frame preview.Frame
	if a.Overlay {
		frame, err = sess.PreviewWithOverlay(ctx)
	} else {
		frame, err = sess.Preview(ctx, applyCrop)
	}
	if err != nil {
		return nil, err
	}
	img, err := imaging.NewInlineImage(frame.Image, f, a.Quality)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"frame_id":   frame.ID,
		"render_ms":  frame.Duration.Milliseconds(),
		"apply_crop": applyCrop,
		"overlay":    a.Overlay,
		"zoom":       sess.Zoom(),
		"image":      img,
		"preview":    sess.PreviewStats(),
	}, nil
}

type editorSampleColorArgs struct {
	sessionArgs
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius int     `json:"radius"`
}

func (s *Server) handleEditorSampleColor(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a editorSampleColorArgs
	sess, err := s.sessionFor(args, &a)
	if err != nil {
		return nil, err
	}
	return sess.SampleColor(ctx, crop.Point{X: a.X, Y: a.Y}, a.Radius)
}

type exportResult struct {
	*editor.Blob
	SizeBytes   int    `json:"size_bytes"`
	ImageBase64 string `json:"image_base64"`
}

func (s *Server) handleEditorExport(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	sess, err := s.sessionFor(args, &a)
	if err != nil {
		return nil, err
	}
	blob, err := sess.Export(ctx)
	if err != nil {
		return nil, err
	}
	return exportResult{
		Blob:        blob,
		SizeBytes:   len(blob.Data),
		ImageBase64: base64.StdEncoding.EncodeToString(blob.Data),
	}, nil
}
