package render

import (
	"fmt"
	"html"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/gg"
)

// SVG is a Surface that emits an SVG document. Each Stroke or Fill writes
// one <path> element for the current path.
type SVG struct {
	width, height int
	path          strings.Builder
	body          strings.Builder
	fontFamily    string
}

// NewSVG creates an empty width×height SVG surface.
func NewSVG(width, height int) *SVG {
	return &SVG{width: width, height: height, fontFamily: "Arial, Helvetica, sans-serif"}
}

func (s *SVG) Size() (int, int) { return s.width, s.height }

func (s *SVG) Clear(col gg.RGBA) {
	s.body.Reset()
	s.path.Reset()
	s.body.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" %s/>`+"\n",
		s.width, s.height, paintAttrs("fill", col)))
}

func (s *SVG) BeginPath() { s.path.Reset() }

func (s *SVG) MoveTo(x, y float64) {
	s.path.WriteString(fmt.Sprintf("M%s,%s ", num(x), num(y)))
}

func (s *SVG) LineTo(x, y float64) {
	s.path.WriteString(fmt.Sprintf("L%s,%s ", num(x), num(y)))
}

func (s *SVG) ClosePath() { s.path.WriteString("Z ") }

// Circle adds two half-circle arcs forming a closed sub-path.
func (s *SVG) Circle(x, y, r float64) {
	s.path.WriteString(fmt.Sprintf("M%s,%s A%s,%s 0 1,0 %s,%s A%s,%s 0 1,0 %s,%s Z ",
		num(x+r), num(y),
		num(r), num(r), num(x-r), num(y),
		num(r), num(r), num(x+r), num(y)))
}

func (s *SVG) Stroke(style StrokeStyle) error {
	d := s.pathData()
	if d == "" {
		return nil
	}
	attrs := fmt.Sprintf(`fill="none" %s stroke-width="%s"`, paintAttrs("stroke", style.Color), num(style.Width))
	if len(style.Dash) > 0 {
		parts := make([]string, len(style.Dash))
		for i, v := range style.Dash {
			parts[i] = num(v)
		}
		attrs += fmt.Sprintf(` stroke-dasharray="%s"`, strings.Join(parts, ","))
	}
	s.body.WriteString(fmt.Sprintf(`<path d="%s" %s/>`+"\n", d, attrs))
	return nil
}

func (s *SVG) Fill(col gg.RGBA) error {
	d := s.pathData()
	if d == "" {
		return nil
	}
	s.body.WriteString(fmt.Sprintf(`<path d="%s" %s/>`+"\n", d, paintAttrs("fill", col)))
	return nil
}

func (s *SVG) Text(str string, x, y float64, style TextStyle) {
	if str == "" {
		return
	}
	anchor := "start"
	switch style.Align {
	case AlignCenter:
		anchor = "middle"
	case AlignRight:
		anchor = "end"
	}
	transform := ""
	if style.Vertical {
		transform = fmt.Sprintf(` transform="rotate(-90 %s %s)"`, num(x), num(y))
	}
	s.body.WriteString(fmt.Sprintf(`<text x="%s" y="%s" font-family="%s" font-size="%s" text-anchor="%s" %s%s>%s</text>`+"\n",
		num(x), num(y), s.fontFamily, num(style.Size), anchor, paintAttrs("fill", style.Color), transform,
		html.EscapeString(str)))
}

// String returns the complete SVG document.
func (s *SVG) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
`, s.width, s.height, s.width, s.height))
	sb.WriteString(s.body.String())
	sb.WriteString("</svg>\n")
	return sb.String()
}

func (s *SVG) Encode(w io.Writer) error {
	_, err := io.WriteString(w, s.String())
	return err
}

func (s *SVG) ContentType() string { return "image/svg+xml" }

func (s *SVG) pathData() string {
	return strings.TrimSpace(s.path.String())
}

// paintAttrs renders a color as an SVG paint attribute plus its opacity.
func paintAttrs(attr string, c gg.RGBA) string {
	out := fmt.Sprintf(`%s="rgb(%d,%d,%d)"`, attr, channel(c.R), channel(c.G), channel(c.B))
	if c.A < 1 {
		out += fmt.Sprintf(` %s-opacity="%s"`, attr, num(c.A))
	}
	return out
}

func channel(v float64) int {
	return int(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// num formats a coordinate with at most two decimals. Non-finite values are
// written as-is so that broken inputs stay visible in the document.
func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
