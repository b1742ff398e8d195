// Package studio provides the HTTP and WebSocket surface of the diagram
// engine: listing diagrams and their fields, rendering and exporting a
// parameter record, archiving snapshots, and live redraw over a socket.
//
// The service owns no parameter state. Every request carries the full
// parameter record; missing fields take their defaults.
package studio

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/econviz/diagram-engine/internal/config"
	"github.com/econviz/diagram-engine/internal/diagram"
	"github.com/econviz/diagram-engine/internal/export"
	"github.com/econviz/diagram-engine/internal/metrics"
	"github.com/econviz/diagram-engine/internal/model"
	"github.com/econviz/diagram-engine/internal/render"
	"github.com/econviz/diagram-engine/internal/store"
)

// MaxCanvasSide bounds the width and height a request may ask for.
const MaxCanvasSide = 4096

var errBadSize = errors.New("studio: invalid canvas size")

// Service handles diagram operations. Draws are independent per request and
// need no locking; the style is shared read-only.
type Service struct {
	store  store.Store
	style  *config.Style
	width  int
	height int
	wsHub  *WSHub // optional WebSocket hub for live redraw and broadcasts
}

// NewService creates a new diagram service drawing at width x height unless
// a request overrides the size.
// Pass nil for hub if WebSocket broadcasting is not needed.
func NewService(st store.Store, style *config.Style, width, height int, hub *WSHub) *Service {
	return &Service{
		store:  st,
		style:  style,
		width:  width,
		height: height,
		wsHub:  hub,
	}
}

// --- Request/Response types ---

// RenderRequest is the JSON body of the render, result and export
// endpoints. An empty body draws the defaults.
type RenderRequest struct {
	Parameters model.Params `json:"parameters"`
}

// SnapshotRequest is the JSON body for POST /snapshots.
type SnapshotRequest struct {
	Kind       string       `json:"kind"`
	Parameters model.Params `json:"parameters"`
}

// DiagramInfo describes one diagram kind for a client building its form.
type DiagramInfo struct {
	Kind        diagram.Kind    `json:"kind"`
	Title       string          `json:"title"`
	Explanation string          `json:"explanation"`
	XLabel      string          `json:"x_label"`
	YLabel      string          `json:"y_label"`
	Fields      []diagram.Field `json:"fields"`
	Defaults    model.Params    `json:"defaults"`
}

func describe(d diagram.Diagram) DiagramInfo {
	x, y := d.AxisTitles()
	return DiagramInfo{
		Kind:        d.Kind(),
		Title:       d.Title(),
		Explanation: d.Explanation(),
		XLabel:      x,
		YLabel:      y,
		Fields:      d.Fields(),
		Defaults:    diagram.Defaults(d),
	}
}

// --- HTTP Handlers ---

// ListDiagrams handles GET /api/v1/diagrams
func (s *Service) ListDiagrams(w http.ResponseWriter, r *http.Request) {
	all := diagram.All()
	infos := make([]DiagramInfo, 0, len(all))
	for _, d := range all {
		infos = append(infos, describe(d))
	}
	writeJSON(w, http.StatusOK, infos)
}

// GetDiagram handles GET /api/v1/diagrams/{kind}
func (s *Service) GetDiagram(w http.ResponseWriter, r *http.Request) {
	d, err := lookup(chi.URLParam(r, "kind"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, describe(d))
}

// RenderDiagram handles POST /api/v1/diagrams/{kind}/render?format=png|svg
func (s *Service) RenderDiagram(w http.ResponseWriter, r *http.Request) {
	d, params, err := s.decodeDraw(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	format, err := render.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	width, height, err := s.canvasSize(r)
	if err != nil {
		writeFailure(w, err)
		return
	}

	img, err := s.draw(d, format, width, height, params)
	if err != nil {
		writeFailure(w, err)
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(img.Data)
}

// ComputeResult handles POST /api/v1/diagrams/{kind}/result
//
// Returns the result record without encoding an image.
func (s *Service) ComputeResult(w http.ResponseWriter, r *http.Request) {
	d, params, err := s.decodeDraw(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	res, err := s.compute(d, params)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ExportDiagram handles POST /api/v1/diagrams/{kind}/export?format=csv|embed|json|png|svg
func (s *Service) ExportDiagram(w http.ResponseWriter, r *http.Request) {
	d, params, err := s.decodeDraw(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	switch format {
	case "csv":
		res, err := s.compute(d, params)
		if err != nil {
			writeFailure(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", attachment(export.CSVFilename))
		if err := export.WriteCSV(w, res); err != nil {
			slog.Error("csv export failed", "kind", d.Kind(), "err", err)
			return
		}

	case "json":
		res, err := s.compute(d, params)
		if err != nil {
			writeFailure(w, err)
			return
		}
		w.Header().Set("Content-Disposition", attachment("economic_graph_data.json"))
		writeJSON(w, http.StatusOK, res)

	case "embed":
		img, err := s.draw(d, render.FormatPNG, s.width, s.height, params)
		if err != nil {
			writeFailure(w, err)
			return
		}
		snippet, err := export.Embed(img.Data, img.Result)
		if err != nil {
			writeFailure(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, snippet)

	case "png", "svg":
		img, err := s.draw(d, render.Format(format), s.width, s.height, params)
		if err != nil {
			writeFailure(w, err)
			return
		}
		name := export.ImageFilename
		if format == "svg" {
			name = "economic-graph.svg"
		}
		w.Header().Set("Content-Type", img.ContentType)
		w.Header().Set("Content-Disposition", attachment(name))
		w.WriteHeader(http.StatusOK)
		w.Write(img.Data)

	default:
		writeError(w, fmt.Sprintf("unsupported export format %q", format), http.StatusBadRequest)
		return
	}

	metrics.ExportsTotal.WithLabelValues(format).Inc()
	slog.Info("diagram exported", "kind", d.Kind(), "format", format)
}

// CreateSnapshot handles POST /api/v1/snapshots
func (s *Service) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	var req SnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	d, err := lookup(req.Kind)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if err := diagram.Validate(d, req.Parameters); err != nil {
		writeFailure(w, err)
		return
	}

	res, err := s.compute(d, req.Parameters)
	if err != nil {
		writeFailure(w, err)
		return
	}
	snap := export.NewSnapshot(res)

	if err := s.store.CreateSnapshot(r.Context(), snap); err != nil {
		writeFailure(w, err)
		return
	}
	metrics.SnapshotsCreated.WithLabelValues(snap.Kind).Inc()

	slog.Info("snapshot created",
		"id", snap.ID,
		"kind", snap.Kind,
		"figures", len(snap.Figures),
	)

	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:       MsgSnapshotCreated,
			Kind:       snap.Kind,
			SnapshotID: snap.ID,
		})
	}

	writeJSON(w, http.StatusCreated, snap)
}

// ListSnapshots handles GET /api/v1/snapshots?kind=&limit=
func (s *Service) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind != "" {
		k, err := diagram.ParseKind(kind)
		if err != nil {
			writeFailure(w, err)
			return
		}
		kind = string(k)
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	snaps, err := s.store.ListSnapshots(r.Context(), kind, limit)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if snaps == nil {
		snaps = []model.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}

// GetSnapshot handles GET /api/v1/snapshots/{snapshotID}
func (s *Service) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.GetSnapshot(r.Context(), chi.URLParam(r, "snapshotID"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// SnapshotImage handles GET /api/v1/snapshots/{snapshotID}/image?format=png|svg
//
// Re-renders the archived parameter record with the current style.
func (s *Service) SnapshotImage(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.GetSnapshot(r.Context(), chi.URLParam(r, "snapshotID"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	d, err := lookup(snap.Kind)
	if err != nil {
		writeFailure(w, err)
		return
	}
	format, err := render.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	width, height, err := s.canvasSize(r)
	if err != nil {
		writeFailure(w, err)
		return
	}

	img, err := s.draw(d, format, width, height, snap.Params)
	if err != nil {
		writeFailure(w, err)
		return
	}
	w.Header().Set("Content-Type", img.ContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(img.Data)
}

// --- Drawing ---

// draw renders d to an encoded image and records render metrics.
func (s *Service) draw(d diagram.Diagram, format render.Format, width, height int, params model.Params) (*export.Image, error) {
	start := time.Now()
	img, err := export.RenderImage(d, format, width, height, s.style, params)
	metrics.ObserveRender(string(d.Kind()), string(format), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	observeSolutions(img.Result)
	return img, nil
}

// compute draws d onto a recording surface and returns only the result.
func (s *Service) compute(d diagram.Diagram, params model.Params) (diagram.Result, error) {
	start := time.Now()
	res, err := diagram.Render(d, render.NewRecorder(s.width, s.height), s.style, params)
	metrics.ObserveRender(string(d.Kind()), "result", time.Since(start), err)
	if err != nil {
		return res, err
	}
	observeSolutions(res)
	return res, nil
}

// frame renders one live redraw as a WebSocket message.
func (s *Service) frame(req LiveRequest) WSMessage {
	d, err := lookup(req.Kind)
	if err != nil {
		return errorMessage(req.Seq, err)
	}
	if err := diagram.Validate(d, req.Parameters); err != nil {
		return errorMessage(req.Seq, err)
	}
	format, err := render.ParseFormat(req.Format)
	if err != nil {
		return errorMessage(req.Seq, err)
	}
	if req.Format == "" {
		format = render.FormatSVG
	}

	img, err := s.draw(d, format, s.width, s.height, req.Parameters)
	if err != nil {
		return errorMessage(req.Seq, err)
	}

	data := string(img.Data)
	if format == render.FormatPNG {
		data = base64.StdEncoding.EncodeToString(img.Data)
	}
	res := img.Result
	return WSMessage{
		Type:        MsgFrame,
		Seq:         req.Seq,
		Kind:        string(d.Kind()),
		Result:      &res,
		ContentType: img.ContentType,
		Image:       data,
	}
}

func observeSolutions(res diagram.Result) {
	for _, sol := range res.Solutions {
		metrics.ObserveSolve(sol.Iterations, sol.Converged)
	}
}

// --- Request helpers ---

func lookup(name string) (diagram.Diagram, error) {
	kind, err := diagram.ParseKind(name)
	if err != nil {
		return nil, err
	}
	return diagram.Lookup(kind)
}

// decodeDraw resolves the {kind} URL parameter and decodes and validates the
// optional RenderRequest body.
func (s *Service) decodeDraw(r *http.Request) (diagram.Diagram, model.Params, error) {
	d, err := lookup(chi.URLParam(r, "kind"))
	if err != nil {
		return nil, nil, err
	}

	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%w: %v", errBadBody, err)
	}
	if err := diagram.Validate(d, req.Parameters); err != nil {
		return nil, nil, err
	}
	return d, req.Parameters, nil
}

var errBadBody = errors.New("invalid request body")

// canvasSize reads optional width and height query parameters.
func (s *Service) canvasSize(r *http.Request) (int, int, error) {
	width, height := s.width, s.height
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *int
	}{{"width", &width}, {"height", &height}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxCanvasSide {
			return 0, 0, fmt.Errorf("%w: %s=%q", errBadSize, p.name, v)
		}
		*p.dst = n
	}
	return width, height, nil
}

func attachment(name string) string {
	return fmt.Sprintf("attachment; filename=%q", name)
}

// --- Response helpers ---

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, diagram.ErrUnknownKind), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, diagram.ErrOutOfRange),
		errors.Is(err, diagram.ErrUnknownParam),
		errors.Is(err, render.ErrUnknownFormat),
		errors.Is(err, model.ErrInvalidViewport),
		errors.Is(err, errBadSize),
		errors.Is(err, errBadBody):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeFailure(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "err", err)
		writeError(w, "internal error", status)
		return
	}
	writeError(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
