// Package render composes segmented replies for display: HTML fragments for
// the web client and styled text for the terminal.
package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/comigor/nexucore/internal/chart"
	"github.com/comigor/nexucore/internal/sandbox"
	"github.com/comigor/nexucore/internal/segment"
)

// Block is one displayable fragment, in reply order.
type Block struct {
	Kind segment.Kind `json:"kind"`
	HTML string       `json:"html"`
	Span segment.Span `json:"span"`
}

// HTMLComposer turns segments into HTML blocks. Markdown is converted with
// GitHub flavoured extensions; raw HTML inside prose is not passed through,
// only preview blocks carry markup and those go into a sandboxed iframe.
type HTMLComposer struct {
	md     goldmark.Markdown
	blocks []Block
}

// NewHTMLComposer returns a composer with the GFM markdown extensions.
func NewHTMLComposer() *HTMLComposer {
	return &HTMLComposer{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

// Compose renders segs into blocks. A composer may be reused; each call
// starts from an empty block list.
func (c *HTMLComposer) Compose(segs []segment.Segment) ([]Block, error) {
	c.blocks = make([]Block, 0, len(segs))
	if err := segment.Walk(segs, c); err != nil {
		return nil, err
	}
	return c.blocks, nil
}

func (c *HTMLComposer) VisitText(s segment.Text) error {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(s.Content), &buf); err != nil {
		return fmt.Errorf("convert markdown at %d: %w", s.Pos.Start, err)
	}
	c.push(s, `<div class="markdown-body">`+buf.String()+`</div>`)
	return nil
}

func (c *HTMLComposer) VisitChart(s segment.Chart) error {
	scene := chart.Render(s.Spec)
	if scene == nil {
		c.push(s, fmt.Sprintf(`<figure class="chart chart-empty" data-type="%s"></figure>`, html.EscapeString(string(s.Spec.Type))))
		return nil
	}
	c.push(s, fmt.Sprintf(`<figure class="chart" data-type="%s">%s</figure>`, s.Spec.Type, scene.SVG()))
	return nil
}

func (c *HTMLComposer) VisitChartError(s segment.ChartError) error {
	c.push(s, `<div class="chart-error" role="alert">`+html.EscapeString(s.Notice)+`</div>`)
	return nil
}

func (c *HTMLComposer) VisitPreview(s segment.Preview) error {
	c.push(s, `<div class="preview">`+sandbox.New(s.Markup).Render()+`</div>`)
	return nil
}

func (c *HTMLComposer) push(s segment.Segment, fragment string) {
	c.blocks = append(c.blocks, Block{Kind: s.Kind(), HTML: fragment, Span: s.Span()})
}

// HTML segments text and composes it in one step.
func HTML(text string) ([]Block, error) {
	return NewHTMLComposer().Compose(segment.Split(text))
}
