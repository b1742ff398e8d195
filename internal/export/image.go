package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/econviz/diagram-engine/internal/config"
	"github.com/econviz/diagram-engine/internal/diagram"
	"github.com/econviz/diagram-engine/internal/model"
	"github.com/econviz/diagram-engine/internal/render"
)

// ImageFilename is the suggested download name for a PNG export.
const ImageFilename = "economic-graph.png"

// Image is one rendered diagram together with the result it produced.
type Image struct {
	Format      render.Format
	ContentType string
	Data        []byte
	Result      diagram.Result
}

// RenderImage draws d at the given pixel size and encodes it.
func RenderImage(d diagram.Diagram, format render.Format, width, height int, style *config.Style, params model.Params) (*Image, error) {
	if err := style.Viewport(width, height).Validate(); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	surface, err := render.New(format, width, height)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	if c, ok := surface.(io.Closer); ok {
		defer c.Close()
	}

	res, err := diagram.Render(d, surface, style, params)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	var buf bytes.Buffer
	if err := surface.Encode(&buf); err != nil {
		return nil, fmt.Errorf("export: encode %s: %w", format, err)
	}
	return &Image{
		Format:      format,
		ContentType: surface.ContentType(),
		Data:        buf.Bytes(),
		Result:      res,
	}, nil
}
