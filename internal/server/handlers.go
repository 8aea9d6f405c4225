package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/cyst-tools-mcp/internal/analysis"
	"github.com/ironsheep/cyst-tools-mcp/internal/imaging"
	"github.com/ironsheep/cyst-tools-mcp/internal/overlay"
	"github.com/ironsheep/cyst-tools-mcp/internal/redact"
	"github.com/ironsheep/cyst-tools-mcp/internal/taskstore"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "cyst_score_roots").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// toolResult wraps the output of a tracked tool with its task id.
type toolResult struct {
	TaskID string      `json:"task_id,omitempty"`
	Result interface{} `json:"result"`
}

// summarizer is implemented by results too large to keep in the task store,
// such as encoded images.
type summarizer interface {
	Summary() interface{}
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
// Analysis failures carry their error record as data.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		var data interface{} = err.Error()
		var ae *analysis.Error
		if errors.As(err, &ae) {
			data = ae.ToMap()
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", data)
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
//
// Every cyst_* tool runs as a task: it is recorded as processing before the
// handler starts and as completed or error afterwards.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	var handler func(json.RawMessage) (interface{}, error)
	switch name {
	case "cyst_analyze_lesion":
		handler = s.handleAnalyzeLesion
	case "cyst_score_roots":
		handler = s.handleScoreRoots
	case "cyst_report":
		handler = s.handleReport
	case "cyst_redact":
		handler = s.handleRedact
	case "cyst_overlay":
		handler = s.handleOverlay
	case "task_status":
		return s.handleTaskStatus(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	return s.runTask(ctx, name, args, handler)
}

func (s *Server) runTask(ctx context.Context, name string, args json.RawMessage, handler func(json.RawMessage) (interface{}, error)) (interface{}, error) {
	start := time.Now()
	// Rasters are only reused within one call.
	defer s.cache.Clear()

	id, err := s.tracker.Begin(ctx, name)
	if err != nil {
		s.logger.Warn("failed to record task", zap.String("tool", name), zap.Error(err))
	}

	result, runErr := handler(args)

	fields := []zap.Field{
		zap.String("tool", name),
		zap.String("task_id", id),
		zap.Duration("duration", time.Since(start)),
		zap.Int("cached_images", s.cache.Len()),
	}
	if runErr != nil {
		fields = append(fields, zap.Error(runErr))
		if kind := analysis.KindOf(runErr); kind != "" {
			fields = append(fields, zap.String("error_code", string(kind)))
		}
		s.logger.Warn("tool call failed", fields...)
	} else {
		s.logger.Info("tool call completed", fields...)
	}

	if id != "" {
		var trackErr error
		if runErr != nil {
			trackErr = s.tracker.Fail(ctx, id, runErr)
		} else {
			var stored interface{} = result
			if sum, ok := result.(summarizer); ok {
				stored = sum.Summary()
			}
			trackErr = s.tracker.Complete(ctx, id, stored)
		}
		if trackErr != nil {
			s.logger.Warn("failed to update task", zap.String("task_id", id), zap.Error(trackErr))
		}
	}

	if runErr != nil {
		return nil, runErr
	}
	return toolResult{TaskID: id, Result: result}, nil
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func (s *Server) loadLesion(op, path string) (*imaging.BinaryMask, error) {
	mask, err := s.cache.LoadMask(path)
	if err != nil {
		return nil, analysis.NewInvalidMaskError(op, "failed to load lesion mask", err)
	}
	return mask, nil
}

// === Measurement Handlers ===

type analyzeLesionArgs struct {
	MaskPath string `json:"mask_path"`
}

func (s *Server) handleAnalyzeLesion(args json.RawMessage) (interface{}, error) {
	var a analyzeLesionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return analysis.AnalyzeLesionFile(s.cache, a.MaskPath, s.cfg.LesionOptions())
}

// toothArg describes one tooth mask passed explicitly instead of through a
// directory listing.
type toothArg struct {
	MaskPath string `json:"mask_path"`
	Index    *int   `json:"index"`
	FDI      string `json:"fdi_number"`
	ClassID  *int   `json:"class_id"`
}

func (t toothArg) descriptor() analysis.ToothDescriptor {
	index, classID := -1, -1
	if t.Index != nil {
		index = *t.Index
	}
	if t.ClassID != nil {
		classID = *t.ClassID
	}
	return analysis.NewToothDescriptor(t.MaskPath, index, t.FDI, classID)
}

// resolveTeeth prefers explicit teeth over a teeth_dir listing.
func resolveTeeth(op, dir string, teeth []toothArg) ([]analysis.ToothDescriptor, error) {
	if len(teeth) > 0 {
		out := make([]analysis.ToothDescriptor, len(teeth))
		for i, t := range teeth {
			out[i] = t.descriptor()
		}
		return out, nil
	}
	if dir == "" {
		return nil, analysis.NewNoTeethFoundError(op, "neither teeth nor teeth_dir given")
	}
	listed, err := analysis.ListToothMasks(dir)
	if err != nil {
		return nil, analysis.NewNoTeethFoundError(op, err.Error())
	}
	if len(listed) == 0 {
		return nil, analysis.NewNoTeethFoundError(op, "no tooth_*.png masks in "+dir)
	}
	return listed, nil
}

type scoreRootsArgs struct {
	TeethDir string     `json:"teeth_dir"`
	Teeth    []toothArg `json:"teeth"`
	MaskPath string     `json:"mask_path"`
}

func (s *Server) scoreRoots(a scoreRootsArgs) (*analysis.RootCystAnalysisResult, error) {
	const op = "score_root_overlap"
	if len(a.Teeth) == 0 {
		return analysis.ScoreRootOverlapDir(s.cache, a.TeethDir, a.MaskPath, s.cfg.OverlapOptions())
	}
	lesion, err := s.loadLesion(op, a.MaskPath)
	if err != nil {
		return nil, err
	}
	teeth, err := resolveTeeth(op, a.TeethDir, a.Teeth)
	if err != nil {
		return nil, err
	}
	return analysis.ScoreRootOverlap(s.cache, teeth, lesion, s.cfg.OverlapOptions())
}

func (s *Server) handleScoreRoots(args json.RawMessage) (interface{}, error) {
	var a scoreRootsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.scoreRoots(a)
}

type reportResult struct {
	Report string `json:"report"`
}

func (s *Server) handleReport(args json.RawMessage) (interface{}, error) {
	var a scoreRootsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	res, err := s.scoreRoots(a)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	if err := analysis.WriteReport(&b, res); err != nil {
		return nil, err
	}
	return &reportResult{Report: b.String()}, nil
}

// === Image Output Handlers ===

type redactArgs struct {
	ImagePath  string `json:"image_path"`
	MaskPath   string `json:"mask_path"`
	Method     string `json:"method"`
	FillColor  string `json:"fill_color"`
	OutputPath string `json:"output_path"`
}

type redactResult struct {
	Method     redact.Method `json:"method"`
	FillColor  string        `json:"fill_color,omitempty"`
	OutputPath string        `json:"output_path,omitempty"`
	*imaging.EncodedImage
}

func (r *redactResult) Summary() interface{} {
	return map[string]interface{}{
		"method":      r.Method,
		"output_path": r.OutputPath,
		"width":       r.Width,
		"height":      r.Height,
	}
}

func (s *Server) handleRedact(args json.RawMessage) (interface{}, error) {
	var a redactArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Method == "" {
		a.Method = s.cfg.Redact.DefaultMethod
	}
	method, err := redact.ParseMethod(a.Method)
	if err != nil {
		return nil, err
	}
	opts := redact.Options{Method: method, Padding: s.cfg.Redact.Padding}
	if method == redact.ColorFill {
		if a.FillColor == "" {
			a.FillColor = s.cfg.Redact.FillColor
		}
		fill, err := imaging.ParseHexColor(a.FillColor)
		if err != nil {
			return nil, err
		}
		opts.FillColor = &fill
	}

	img, err := s.cache.Load(a.ImagePath)
	if err != nil {
		return nil, err
	}
	lesion, err := s.loadLesion("redact", a.MaskPath)
	if err != nil {
		return nil, err
	}

	out, err := redact.RedactLesion(img, lesion, opts)
	if err != nil {
		return nil, err
	}
	if a.OutputPath != "" {
		if err := imaging.SavePNG(out, a.OutputPath); err != nil {
			return nil, err
		}
	}
	enc, err := imaging.EncodePNG(out)
	if err != nil {
		return nil, err
	}

	res := &redactResult{Method: method, OutputPath: a.OutputPath, EncodedImage: enc}
	if opts.FillColor != nil {
		res.FillColor = opts.FillColor.Hex()
	}
	return res, nil
}

type overlayArgs struct {
	TeethDir   string     `json:"teeth_dir"`
	Teeth      []toothArg `json:"teeth"`
	MaskPath   string     `json:"mask_path"`
	ImagePath  string     `json:"image_path"`
	Legend     *bool      `json:"legend"`
	OutputPath string     `json:"output_path"`
}

type overlayResult struct {
	Teeth        []overlay.Annotation `json:"teeth"`
	SkippedMasks int                  `json:"skipped_masks"`
	OutputPath   string               `json:"output_path,omitempty"`
	*imaging.EncodedImage
}

func (r *overlayResult) Summary() interface{} {
	return map[string]interface{}{
		"teeth":         r.Teeth,
		"skipped_masks": r.SkippedMasks,
		"output_path":   r.OutputPath,
		"width":         r.Width,
		"height":        r.Height,
	}
}

func (s *Server) handleOverlay(args json.RawMessage) (interface{}, error) {
	var a overlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	legend := s.cfg.Overlay.Legend
	if a.Legend != nil {
		legend = *a.Legend
	}

	teeth, err := resolveTeeth("render_overlay", a.TeethDir, a.Teeth)
	if err != nil {
		return nil, err
	}
	base, err := s.cache.Load(a.ImagePath)
	if err != nil {
		return nil, err
	}
	lesion, err := s.loadLesion("render_overlay", a.MaskPath)
	if err != nil {
		return nil, err
	}

	res, err := overlay.RenderOverlay(s.cache, teeth, lesion, base, overlay.Options{
		LineWidth: s.cfg.Overlay.LineWidth,
		Legend:    legend,
	})
	if err != nil {
		return nil, err
	}
	if a.OutputPath != "" {
		if err := imaging.SavePNG(res.Image, a.OutputPath); err != nil {
			return nil, err
		}
	}
	enc, err := imaging.EncodePNG(res.Image)
	if err != nil {
		return nil, err
	}
	return &overlayResult{
		Teeth:        res.Teeth,
		SkippedMasks: res.SkippedMasks,
		OutputPath:   a.OutputPath,
		EncodedImage: enc,
	}, nil
}

// === Task Handlers ===

type taskStatusArgs struct {
	TaskID string `json:"task_id"`
}

func (s *Server) handleTaskStatus(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a taskStatusArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	task, err := s.tracker.Get(ctx, a.TaskID)
	if err != nil {
		if errors.Is(err, taskstore.ErrNotFound) {
			return nil, fmt.Errorf("unknown task_id %q", a.TaskID)
		}
		return nil, err
	}
	return task, nil
}
