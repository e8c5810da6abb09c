package chart

import (
	"errors"
	"fmt"
	"time"
)

// Format is an export file format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ErrEmptyChart is returned when exporting a spec that draws nothing.
var ErrEmptyChart = errors.New("chart has no drawable data")

// Export is a rendered chart ready to be offered as a download.
type Export struct {
	Name        string
	ContentType string
	Body        []byte
}

// ExportName builds the download name, e.g. nexucore-viz-1700000000000.svg.
func ExportName(app string, f Format, at time.Time) string {
	return fmt.Sprintf("%s-viz-%d.%s", app, at.UnixMilli(), f)
}

// Exporter renders specs into downloadable files.
type Exporter struct {
	App string
	Now func() time.Time
}

// Export renders spec and serializes it in format f.
func (e Exporter) Export(spec Spec, f Format) (Export, error) {
	scene := Render(spec)
	if scene == nil {
		return Export{}, ErrEmptyChart
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	app := e.App
	if app == "" {
		app = "nexucore"
	}

	switch f {
	case FormatSVG:
		return Export{Name: ExportName(app, f, now()), ContentType: "image/svg+xml;charset=utf-8", Body: scene.SVG()}, nil
	case FormatPNG:
		body, err := scene.PNG()
		if err != nil {
			return Export{}, fmt.Errorf("rasterize chart: %w", err)
		}
		return Export{Name: ExportName(app, f, now()), ContentType: "image/png", Body: body}, nil
	}
	return Export{}, fmt.Errorf("unsupported export format %q", f)
}
