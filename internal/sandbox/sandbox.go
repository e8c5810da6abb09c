// Package sandbox hosts model-generated HTML previews inside an isolated
// document. Markup is never validated or sanitized: isolation is provided by
// the iframe sandbox and the CSP sandbox directive.
package sandbox

import (
	"errors"
	"fmt"
	"html"
	"strings"
)

// ContentSecurityPolicy is sent with a host document served on its own.
// Without allow-same-origin the document runs in an opaque origin and cannot
// reach the application's storage, cookies or DOM.
const ContentSecurityPolicy = "sandbox allow-scripts"

// FrameSandbox is the sandbox attribute of the preview iframe.
const FrameSandbox = "allow-scripts"

// View selects how a preview is shown.
type View int

const (
	Rendered View = iota
	Raw
)

func (v View) String() string {
	if v == Raw {
		return "raw"
	}
	return "rendered"
}

// ErrReadOnly is returned when editing a preview that is not in the raw view.
var ErrReadOnly = errors.New("preview is not in the raw source view")

const hostHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<script src="https://cdn.tailwindcss.com"></script>
<style>
  body { font-family: Inter, system-ui, -apple-system, sans-serif; margin: 0; padding: 1rem; background: #f4f4f5; color: #18181b; }
  ::-webkit-scrollbar { width: 8px; height: 8px; }
  ::-webkit-scrollbar-track { background: transparent; }
  ::-webkit-scrollbar-thumb { background: #d4d4d8; border-radius: 4px; }
  ::-webkit-scrollbar-thumb:hover { background: #a1a1aa; }
</style>
</head>
<body>
`

const hostTail = `
</body>
</html>
`

// HostDocument embeds markup verbatim into the minimal host page.
func HostDocument(markup string) string {
	var sb strings.Builder
	sb.Grow(len(hostHead) + len(markup) + len(hostTail))
	sb.WriteString(hostHead)
	sb.WriteString(markup)
	sb.WriteString(hostTail)
	return sb.String()
}

// Frame returns the sandboxed iframe showing the host document for markup.
func Frame(markup string) string {
	return fmt.Sprintf(`<iframe class="preview-frame" title="Preview" sandbox="%s" srcdoc="%s"></iframe>`,
		FrameSandbox, html.EscapeString(HostDocument(markup)))
}

// Sandbox is one preview: the markup it shows and the current view. The
// markup is the single source of truth; every render rebuilds the whole
// document from it.
type Sandbox struct {
	markup string
	view   View
}

// New returns a sandbox showing markup in the rendered view.
func New(markup string) *Sandbox {
	return &Sandbox{markup: markup}
}

// Markup returns the authoritative markup.
func (s *Sandbox) Markup() string { return s.markup }

// View returns the current view.
func (s *Sandbox) View() View { return s.view }

// Toggle flips between the rendered and raw views and returns the new one.
func (s *Sandbox) Toggle() View {
	if s.view == Rendered {
		s.view = Raw
	} else {
		s.view = Rendered
	}
	return s.view
}

// Edit replaces the markup from the raw source view.
func (s *Sandbox) Edit(markup string) error {
	if s.view != Raw {
		return ErrReadOnly
	}
	s.markup = markup
	return nil
}

// Document returns the host document for the current markup.
func (s *Sandbox) Document() string { return HostDocument(s.markup) }

// Render returns the HTML fragment for the current view: the sandboxed iframe
// when rendered, an editable text area holding the source when raw.
func (s *Sandbox) Render() string {
	if s.view == Raw {
		return `<textarea class="preview-source" spellcheck="false">` + html.EscapeString(s.markup) + `</textarea>`
	}
	return Frame(s.markup)
}

// Export returns the unmodified markup as a download.
func (s *Sandbox) Export(app string) Export {
	return NewExport(app, s.markup)
}

// Export is a preview ready to be offered as a download.
type Export struct {
	Name        string
	ContentType string
	Body        []byte
}

// ExportName is the download name, e.g. nexucore-design.html.
func ExportName(app string) string {
	if app == "" {
		app = "nexucore"
	}
	return app + "-design.html"
}

// NewExport wraps markup as a download without modifying it.
func NewExport(app, markup string) Export {
	return Export{Name: ExportName(app), ContentType: "text/html;charset=utf-8", Body: []byte(markup)}
}
