package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Raster export canvas.
const (
	ExportWidth  = 1500
	ExportHeight = 900
)

// ExportBackground is painted behind the vector content of a PNG export.
var ExportBackground = color.RGBA{R: 0x09, G: 0x09, B: 0x0b, A: 0xff}

// PNG rasterizes the scene; see WritePNG.
func (s *Scene) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.WritePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePNG rasterizes the scene onto an ExportWidth x ExportHeight canvas
// filled with ExportBackground and encodes it as PNG. Shapes go through the
// SVG rasterizer; labels are drawn afterwards with the Go fonts.
func (s *Scene) WritePNG(w io.Writer) error {
	img := image.NewRGBA(image.Rect(0, 0, ExportWidth, ExportHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(ExportBackground), image.Point{}, draw.Src)

	icon, err := oksvg.ReadIconStream(bytes.NewReader(s.SVG()), oksvg.IgnoreErrorMode)
	if err != nil {
		return fmt.Errorf("parse chart svg: %w", err)
	}
	icon.SetTarget(0, 0, ExportWidth, ExportHeight)
	scanner := rasterx.NewScannerGV(ExportWidth, ExportHeight, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(ExportWidth, ExportHeight, scanner), 1)

	scale := ExportWidth / s.Width
	for _, e := range s.Elements {
		t, ok := e.(Text)
		if !ok {
			continue
		}
		if err := drawText(img, t, scale); err != nil {
			return err
		}
	}
	return png.Encode(w, img)
}

type faceKey struct {
	size float64
	bold bool
}

var (
	facesMu sync.Mutex
	faces   = map[faceKey]font.Face{}
)

func faceFor(size float64, bold bool) (font.Face, error) {
	facesMu.Lock()
	defer facesMu.Unlock()

	key := faceKey{size: size, bold: bold}
	if f, ok := faces[key]; ok {
		return f, nil
	}
	ttf := goregular.TTF
	if bold {
		ttf = gobold.TTF
	}
	parsed, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	f, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("load font face: %w", err)
	}
	faces[key] = f
	return f, nil
}

func toFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(v * 64) }

func drawText(dst *image.RGBA, t Text, scale float64) error {
	face, err := faceFor(t.Size*scale, t.Bold)
	if err != nil {
		return err
	}
	src := image.NewUniform(parseColor(t.Fill))
	width := font.MeasureString(face, t.Content)
	var offset fixed.Int26_6
	switch t.Anchor {
	case AnchorMiddle:
		offset = width / 2
	case AnchorEnd:
		offset = width
	}

	if t.Rotate == 0 {
		d := font.Drawer{Dst: dst, Src: src, Face: face, Dot: fixed.Point26_6{X: toFixed(t.X*scale) - offset, Y: toFixed(t.Y * scale)}}
		d.DrawString(t.Content)
		return nil
	}

	// Only the -90 degree rotation used by the y axis label is supported.
	m := face.Metrics()
	ascent := m.Ascent.Ceil()
	h := (m.Ascent + m.Descent).Ceil()
	w := width.Ceil()
	if w == 0 || h == 0 {
		return nil
	}
	tmp := image.NewRGBA(image.Rect(0, 0, w, h))
	d := font.Drawer{Dst: tmp, Src: src, Face: face, Dot: fixed.P(0, ascent)}
	d.DrawString(t.Content)

	fx0 := int(t.X*scale) - offset.Round()
	fy0 := int(t.Y*scale) - ascent
	for v := 0; v < h; v++ {
		for u := 0; u < w; u++ {
			c := tmp.RGBAAt(u, v)
			if c.A == 0 {
				continue
			}
			x, y := fy0+v, -(fx0 + u)
			if !(image.Point{X: x, Y: y}).In(dst.Bounds()) {
				continue
			}
			dst.SetRGBA(x, y, over(c, dst.RGBAAt(x, y)))
		}
	}
	return nil
}

// over composites premultiplied src onto dst.
func over(src, dst color.RGBA) color.RGBA {
	k := 255 - uint32(src.A)
	return color.RGBA{
		R: uint8(uint32(src.R) + uint32(dst.R)*k/255),
		G: uint8(uint32(src.G) + uint32(dst.G)*k/255),
		B: uint8(uint32(src.B) + uint32(dst.B)*k/255),
		A: uint8(uint32(src.A) + uint32(dst.A)*k/255),
	}
}

// parseColor understands the colours the renderer emits: #rgb, #rrggbb and white.
func parseColor(s string) color.RGBA {
	if s == "white" {
		return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || len(hex) != 6 {
		return color.RGBA{A: 0xff}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
