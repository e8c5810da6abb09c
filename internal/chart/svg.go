package chart

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"
)

// SVG serializes the scene as a standalone SVG document.
func (s *Scene) SVG() []byte {
	var buf bytes.Buffer
	_ = s.WriteSVG(&buf)
	return buf.Bytes()
}

// WriteSVG writes the scene as a standalone SVG document to w.
func (s *Scene) WriteSVG(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" font-family="sans-serif">`, num(s.Width), num(s.Height)))
	for _, e := range s.Elements {
		sb.WriteString(svgElement(e))
	}
	sb.WriteString("</svg>")
	_, err := io.WriteString(w, sb.String())
	return err
}

func svgElement(e Element) string {
	switch el := e.(type) {
	case Rect:
		return fmt.Sprintf(`<rect class="%s" x="%s" y="%s" width="%s" height="%s" rx="%s" fill="%s"/>`,
			el.Class, num(el.X), num(el.Y), num(el.W), num(el.H), num(el.RX), el.Fill)
	case Circle:
		opacity := ""
		if el.Opacity > 0 && el.Opacity < 1 {
			opacity = fmt.Sprintf(` opacity="%s"`, num(el.Opacity))
		}
		return fmt.Sprintf(`<circle class="%s" cx="%s" cy="%s" r="%s" fill="%s"%s/>`,
			el.Class, num(el.CX), num(el.CY), num(el.R), el.Fill, opacity)
	case Path:
		stroke := ""
		if el.Stroke != "" {
			stroke = fmt.Sprintf(` stroke="%s" stroke-width="%s"`, el.Stroke, num(el.StrokeWidth))
		}
		return fmt.Sprintf(`<path class="%s" d="%s" fill="%s"%s/>`, el.Class, el.D, el.Fill, stroke)
	case Rule:
		return fmt.Sprintf(`<line class="%s" x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s"/>`,
			el.Class, num(el.X1), num(el.Y1), num(el.X2), num(el.Y2), el.Stroke)
	case Text:
		attrs := fmt.Sprintf(`class="%s" x="%s" y="%s" text-anchor="%s" fill="%s" font-size="%spx"`,
			el.Class, num(el.X), num(el.Y), el.Anchor, el.Fill, num(el.Size))
		if el.Bold {
			attrs += ` font-weight="bold"`
		}
		if el.Rotate != 0 {
			attrs = fmt.Sprintf(`transform="rotate(%s)" `, num(el.Rotate)) + attrs
		}
		return "<text " + attrs + ">" + html.EscapeString(el.Content) + "</text>"
	}
	return ""
}
