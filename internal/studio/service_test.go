package studio_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/econviz/diagram-engine/internal/config"
	"github.com/econviz/diagram-engine/internal/model"
	"github.com/econviz/diagram-engine/internal/store"
	"github.com/econviz/diagram-engine/internal/studio"
)

// newTestEnv creates a test Service with in-memory store and chi router.
func newTestEnv(t *testing.T, hub *studio.WSHub) (*studio.Service, *store.MemoryStore, chi.Router) {
	t.Helper()
	ms := store.NewMemoryStore()
	svc := studio.NewService(ms, config.DefaultStyle(), 800, 500, hub)

	r := chi.NewRouter()
	r.Get("/api/v1/ws", svc.HandleLive)
	r.Get("/api/v1/diagrams", svc.ListDiagrams)
	r.Get("/api/v1/diagrams/{kind}", svc.GetDiagram)
	r.Post("/api/v1/diagrams/{kind}/render", svc.RenderDiagram)
	r.Post("/api/v1/diagrams/{kind}/result", svc.ComputeResult)
	r.Post("/api/v1/diagrams/{kind}/export", svc.ExportDiagram)
	r.Get("/api/v1/snapshots", svc.ListSnapshots)
	r.Post("/api/v1/snapshots", svc.CreateSnapshot)
	r.Get("/api/v1/snapshots/{snapshotID}", svc.GetSnapshot)
	r.Get("/api/v1/snapshots/{snapshotID}/image", svc.SnapshotImage)

	return svc, ms, r
}

func do(t *testing.T, router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func params(p model.Params) studio.RenderRequest {
	return studio.RenderRequest{Parameters: p}
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp["error"]
}

// --- Diagram catalogue ---

func TestListDiagrams(t *testing.T) {
	_, _, router := newTestEnv(t, nil)

	w := do(t, router, "GET", "/api/v1/diagrams", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var infos []studio.DiagramInfo
	json.NewDecoder(w.Body).Decode(&infos)

	want := []string{"supply-demand", "subsidy-tariff", "elasticity", "monopoly", "tax-incidence"}
	if len(infos) != len(want) {
		t.Fatalf("expected %d diagrams, got %d", len(want), len(infos))
	}
	for i, k := range want {
		if string(infos[i].Kind) != k {
			t.Errorf("diagram %d = %s, want %s", i, infos[i].Kind, k)
		}
		if len(infos[i].Fields) == 0 || infos[i].Explanation == "" {
			t.Errorf("%s: missing fields or explanation", k)
		}
	}
}

func TestGetDiagram(t *testing.T) {
	_, _, router := newTestEnv(t, nil)

	w := do(t, router, "GET", "/api/v1/diagrams/tax_incidence", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var info studio.DiagramInfo
	json.NewDecoder(w.Body).Decode(&info)
	if info.Defaults["taxAmount"] != 0 || info.Defaults["elasticityRatio"] != 0.5 {
		t.Errorf("defaults = %v", info.Defaults)
	}
	if info.XLabel != "Quantity" || info.YLabel != "Price" {
		t.Errorf("axis titles = %q, %q", info.XLabel, info.YLabel)
	}
}

func TestGetDiagram_UnknownKind(t *testing.T) {
	_, _, router := newTestEnv(t, nil)

	w := do(t, router, "GET", "/api/v1/diagrams/oligopoly", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// --- Rendering ---

func TestRenderDiagram_SVG(t *testing.T) {
	_, _, router := newTestEnv(t, nil)

	w := do(t, router, "POST", "/api/v1/diagrams/supply-demand/render?format=svg", params(nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %s", ct)
	}
	if !strings.Contains(w.Body.String(), "Equilibrium (Q=80, P=130)") {
		t.Error("equilibrium label missing from svg")
	}
}

func TestRenderDiagram_PNG(t *testing.T) {
	_, _, router := newTestEnv(t, nil)

	w := do(t, router, "POST", "/api/v1/diagrams/monopoly/render?width=400&height=300", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %s", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("body is not a PNG")
	}
}

func TestRenderDiagram_BadRequests(t *testing.T) {
	_, _, router := newTestEnv(t, nil)

	tests := []struct {
		name string
		path string
		body any
	}{
		{"out of range", "/api/v1/diagrams/supply-demand/render", params(model.Params{"demandSlope": 2})},
		{"unknown param", "/api/v1/diagrams/supply-demand/render", params(model.Params{"taxAmount": 10})},
		{"unknown format", "/api/v1/diagrams/supply-demand/render?format=gif", nil},
		{"bad width", "/api/v1/diagrams/supply-demand/render?width=abc", nil},
		{"tiny canvas", "/api/v1/diagrams/supply-demand/render?width=60&height=60", nil},
		{"malformed body", "/api/v1/diagrams/supply-demand/render", "not an object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, "POST", tt.path, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if errorBody(t, w) == "" {
				t.Error("expected an error message")
			}
		})
	}
}

func TestComputeResult(t *testing.T) {
	_, _, router := newTestEnv(t, nil)

	w := do(t, router, "POST", "/api/v1/diagrams/tax-incidence/result", params(model.Params{"taxAmount": 0}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]json.RawMessage
	json.NewDecoder(w.Body).Decode(&resp)

	if string(resp["kind"]) != `"tax-incidence"` {
		t.Errorf("kind = %s", resp["kind"])
	}
	if _, ok := resp["original"]; !ok {
		t.Error("missing original equilibrium")
	}
	if _, ok := resp["taxed"]; ok {
		t.Error("taxed equilibrium reported without a tax")
	}
}

// --- Export ---

func TestExportDiagram_CSV(t *testing.T) {
	_, _, router := newTestEnv(t, nil)

	w := do(t, router, "POST", "/api/v1/diagrams/supply-demand/export?format=csv", params(nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "economic_graph_data.csv") {
		t.Errorf("content disposition = %q", cd)
	}

	rows, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if rows[0][0] != "Parameter" || rows[0][1] != "Value" {
		t.Errorf("header = %v", rows[0])
	}
	got := make(map[string]string)
	for _, row := range rows[1:] {
		got[row[0]] = row[1]
	}
	if got["demandIntercept"] != "250" || got["supplySlope"] != "1" {
		t.Errorf("parameter rows = %v", got)
	}
	price, _ := strconv.ParseFloat(got["equilibrium_price"], 64)
	qty, _ := strconv.ParseFloat(got["equilibrium_quantity"], 64)
	if math.Abs(price-130) > 0.01 || math.Abs(qty-80) > 0.01 {
		t.Errorf("equilibrium rows = %q, %q", got["equilibrium_price"], got["equilibrium_quantity"])
	}
}

func TestExportDiagram_Embed(t *testing.T) {
	_, _, router := newTestEnv(t, nil)

	w := do(t, router, "POST", "/api/v1/diagrams/elasticity/export?format=embed", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, `src="data:image/png;base64,`) {
		t.Error("embed snippet lacks inline PNG")
	}
	if !strings.Contains(body, `class="graph-data"`) {
		t.Error("embed snippet lacks data block")
	}
}

func TestExportDiagram_UnsupportedFormat(t *testing.T) {
	_, _, router := newTestEnv(t, nil)

	w := do(t, router, "POST", "/api/v1/diagrams/elasticity/export?format=xlsx", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// --- Snapshots ---

func TestCreateSnapshot(t *testing.T) {
	_, ms, router := newTestEnv(t, nil)

	w := do(t, router, "POST", "/api/v1/snapshots", studio.SnapshotRequest{
		Kind:       "monopoly",
		Parameters: model.Params{"fixedCost": 500},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var snap model.Snapshot
	json.NewDecoder(w.Body).Decode(&snap)

	if snap.ID == "" || snap.Kind != "monopoly" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.Params["fixedCost"] != 500 || snap.Params["demandIntercept"] != 200 {
		t.Errorf("params = %v", snap.Params)
	}
	if v := snap.Figures["monopoly_quantity"]; v.String() != "150" {
		t.Errorf("monopoly_quantity = %s, want 150", v)
	}

	stored, err := ms.GetSnapshot(context.Background(), snap.ID)
	if err != nil {
		t.Fatalf("snapshot not stored: %v", err)
	}
	if stored.Kind != "monopoly" {
		t.Errorf("stored kind = %s", stored.Kind)
	}
}

func TestCreateSnapshot_Invalid(t *testing.T) {
	_, _, router := newTestEnv(t, nil)

	tests := []struct {
		name string
		req  studio.SnapshotRequest
		code int
	}{
		{"unknown kind", studio.SnapshotRequest{Kind: "oligopoly"}, http.StatusNotFound},
		{"out of range", studio.SnapshotRequest{Kind: "monopoly", Parameters: model.Params{"fixedCost": -1}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, "POST", "/api/v1/snapshots", tt.req)
			if w.Code != tt.code {
				t.Errorf("expected %d, got %d: %s", tt.code, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetSnapshot_RoundTrip(t *testing.T) {
	_, _, router := newTestEnv(t, nil)

	w := do(t, router, "POST", "/api/v1/snapshots", studio.SnapshotRequest{Kind: "supply_demand"})
	var created model.Snapshot
	json.NewDecoder(w.Body).Decode(&created)

	w = do(t, router, "GET", "/api/v1/snapshots/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got model.Snapshot
	json.NewDecoder(w.Body).Decode(&got)
	if got.ID != created.ID || got.Kind != "supply-demand" {
		t.Errorf("got %+v", got)
	}

	w = do(t, router, "GET", "/api/v1/snapshots/"+created.ID+"/image?format=svg", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Equilibrium (Q=80, P=130)") {
		t.Error("re-rendered snapshot lacks equilibrium label")
	}
}

func TestGetSnapshot_NotFound(t *testing.T) {
	_, _, router := newTestEnv(t, nil)

	w := do(t, router, "GET", "/api/v1/snapshots/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestListSnapshots_FilterByKind(t *testing.T) {
	_, _, router := newTestEnv(t, nil)

	for _, k := range []string{"monopoly", "elasticity", "monopoly"} {
		w := do(t, router, "POST", "/api/v1/snapshots", studio.SnapshotRequest{Kind: k})
		if w.Code != http.StatusCreated {
			t.Fatalf("create %s: %d", k, w.Code)
		}
	}

	w := do(t, router, "GET", "/api/v1/snapshots?kind=monopoly", nil)
	var snaps []model.Snapshot
	json.NewDecoder(w.Body).Decode(&snaps)
	if len(snaps) != 2 {
		t.Fatalf("expected 2 monopoly snapshots, got %d", len(snaps))
	}
	for _, s := range snaps {
		if s.Kind != "monopoly" {
			t.Errorf("unexpected kind %s", s.Kind)
		}
	}

	w = do(t, router, "GET", "/api/v1/snapshots?limit=0", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("limit=0: expected 400, got %d", w.Code)
	}
}

// --- Live redraw ---

func TestHandleLive_FrameAndBroadcast(t *testing.T) {
	hub := studio.NewWSHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	_, _, router := newTestEnv(t, hub)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	err = conn.WriteJSON(studio.LiveRequest{
		Seq:        7,
		Kind:       "supply-demand",
		Parameters: model.Params{"demandIntercept": 300},
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	var frame struct {
		Type        string                     `json:"type"`
		Seq         int                        `json:"seq"`
		ContentType string                     `json:"content_type"`
		Image       string                     `json:"image"`
		Result      map[string]json.RawMessage `json:"result"`
	}
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if frame.Type != studio.MsgFrame || frame.Seq != 7 {
		t.Fatalf("unexpected frame %+v", frame)
	}
	if frame.ContentType != "image/svg+xml" || !strings.Contains(frame.Image, "<svg") {
		t.Errorf("frame image is not svg: %.60s", frame.Image)
	}
	if _, ok := frame.Result["equilibrium"]; !ok {
		t.Error("frame result lacks equilibrium")
	}

	if err := conn.WriteJSON(studio.LiveRequest{Seq: 8, Kind: "monopoly", Parameters: model.Params{"fixedCost": -5}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var msg studio.WSMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read error message: %v", err)
	}
	if msg.Type != studio.MsgError || msg.Seq != 8 || msg.Error == "" {
		t.Errorf("unexpected message %+v", msg)
	}

	// Snapshot creation reaches the connected client.
	body, _ := json.Marshal(studio.SnapshotRequest{Kind: "elasticity"})
	resp, err := http.Post(srv.URL+"/api/v1/snapshots", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("create snapshot: %v", err)
	}
	resp.Body.Close()

	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if msg.Type != studio.MsgSnapshotCreated || msg.Kind != "elasticity" || msg.SnapshotID == "" {
		t.Errorf("unexpected broadcast %+v", msg)
	}
}
