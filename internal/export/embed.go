package export

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/econviz/diagram-engine/internal/config"
	"github.com/econviz/diagram-engine/internal/diagram"
	"github.com/econviz/diagram-engine/internal/model"
	"github.com/econviz/diagram-engine/internal/render"
)

// ErrMalformedEmbed is returned when a snippet carries no readable payload.
var ErrMalformedEmbed = errors.New("export: malformed embed snippet")

const embedTemplate = `<div class="economic-graph-embed">
  <img src="data:image/png;base64,%s" alt="Economic Graph" style="max-width: 100%%; height: auto;" />
  <div class="graph-data" style="display:none;">%s</div>
</div>`

// payloadRegex extracts the hidden JSON payload of an embed snippet.
var payloadRegex = regexp.MustCompile(`(?s)<div class="graph-data"[^>]*>(.*?)</div>`)

// Embed builds the HTML snippet for a PNG image and the result it shows.
// The payload is the result JSON, which escapes <, > and & so it cannot
// close the hidden element early.
func Embed(png []byte, res diagram.Result) (string, error) {
	payload, err := json.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("export: marshal result: %w", err)
	}
	return fmt.Sprintf(embedTemplate, base64.StdEncoding.EncodeToString(png), payload), nil
}

// EmbedDiagram renders d as PNG and wraps it in an embed snippet.
func EmbedDiagram(d diagram.Diagram, width, height int, style *config.Style, params model.Params) (string, diagram.Result, error) {
	img, err := RenderImage(d, render.FormatPNG, width, height, style, params)
	if err != nil {
		return "", diagram.Result{}, err
	}
	snippet, err := Embed(img.Data, img.Result)
	if err != nil {
		return "", diagram.Result{}, err
	}
	return snippet, img.Result, nil
}

type embedPayload struct {
	Kind       string             `json:"kind"`
	Parameters map[string]float64 `json:"parameters"`
}

// ParseEmbed recovers the diagram kind and parameter record from a snippet
// produced by Embed. Finite parameters round-trip exactly.
func ParseEmbed(snippet string) (diagram.Kind, model.Params, error) {
	m := payloadRegex.FindStringSubmatch(snippet)
	if m == nil {
		return "", nil, fmt.Errorf("%w: no graph-data element", ErrMalformedEmbed)
	}

	raw := strings.TrimSpace(m[1])
	// Tolerate a payload that went through an HTML encoder on the way.
	if strings.HasPrefix(raw, "{&#34;") || strings.HasPrefix(raw, "{&quot;") {
		raw = html.UnescapeString(raw)
	}

	var p embedPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedEmbed, err)
	}
	kind, err := diagram.ParseKind(p.Kind)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedEmbed, err)
	}
	return kind, model.Params(p.Parameters), nil
}

// DecodeEmbedImage returns the PNG bytes inlined in a snippet.
func DecodeEmbedImage(snippet string) ([]byte, error) {
	const prefix = `src="data:image/png;base64,`
	i := strings.Index(snippet, prefix)
	if i < 0 {
		return nil, fmt.Errorf("%w: no inline image", ErrMalformedEmbed)
	}
	rest := snippet[i+len(prefix):]
	j := strings.IndexByte(rest, '"')
	if j < 0 {
		return nil, fmt.Errorf("%w: unterminated image", ErrMalformedEmbed)
	}
	data, err := base64.StdEncoding.DecodeString(rest[:j])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEmbed, err)
	}
	return data, nil
}
