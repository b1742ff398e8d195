package render

import (
	"encoding/json"
	"io"

	"github.com/gogpu/gg"
)

// Op is one recorded surface call.
type Op struct {
	Name   string       `json:"op"`
	Args   []float64    `json:"args,omitempty"`
	Text   string       `json:"text,omitempty"`
	Color  *gg.RGBA     `json:"color,omitempty"`
	Stroke *StrokeStyle `json:"stroke,omitempty"`
	Style  *TextStyle   `json:"style,omitempty"`
}

// Recorder is a Surface that paints nothing and keeps a log of every call.
// Encode writes the log as JSON.
type Recorder struct {
	Width, Height int
	Ops           []Op
}

// NewRecorder creates a recorder reporting the given canvas size.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{Width: width, Height: height}
}

func (r *Recorder) add(op Op) { r.Ops = append(r.Ops, op) }

func (r *Recorder) Size() (int, int) { return r.Width, r.Height }

func (r *Recorder) Clear(col gg.RGBA) { r.add(Op{Name: "clear", Color: &col}) }
func (r *Recorder) BeginPath()        { r.add(Op{Name: "begin"}) }
func (r *Recorder) ClosePath()        { r.add(Op{Name: "close"}) }

func (r *Recorder) MoveTo(x, y float64) {
	r.add(Op{Name: "move", Args: []float64{x, y}})
}

func (r *Recorder) LineTo(x, y float64) {
	r.add(Op{Name: "line", Args: []float64{x, y}})
}

func (r *Recorder) Circle(x, y, radius float64) {
	r.add(Op{Name: "circle", Args: []float64{x, y, radius}})
}

func (r *Recorder) Stroke(style StrokeStyle) error {
	r.add(Op{Name: "stroke", Stroke: &style})
	return nil
}

func (r *Recorder) Fill(col gg.RGBA) error {
	r.add(Op{Name: "fill", Color: &col})
	return nil
}

func (r *Recorder) Text(s string, x, y float64, style TextStyle) {
	r.add(Op{Name: "text", Args: []float64{x, y}, Text: s, Style: &style})
}

// Count returns how many recorded ops carry the given name.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, op := range r.Ops {
		if op.Name == name {
			n++
		}
	}
	return n
}

// Texts returns every text run in drawing order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Ops {
		if op.Name == "text" {
			out = append(out, op.Text)
		}
	}
	return out
}

// Reset drops the recorded log.
func (r *Recorder) Reset() { r.Ops = nil }

func (r *Recorder) Encode(w io.Writer) error {
	return json.NewEncoder(w).Encode(r.Ops)
}

func (r *Recorder) ContentType() string { return "application/json" }
