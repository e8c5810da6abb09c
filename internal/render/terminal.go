package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/comigor/nexucore/internal/chart"
	"github.com/comigor/nexucore/internal/logger"
	"github.com/comigor/nexucore/internal/sandbox"
	"github.com/comigor/nexucore/internal/segment"
)

var (
	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("203")).
			Padding(0, 1)

	previewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// TerminalComposer writes a reply to a terminal. Prose goes through glamour;
// charts and previews cannot be drawn inline, so they are saved to OutDir
// (when set) and announced with their file path.
type TerminalComposer struct {
	w      io.Writer
	md     *glamour.TermRenderer
	OutDir string
	App    string
	Now    func() time.Time

	used map[string]bool
}

// NewTerminalComposer returns a composer writing to w with markdown wrapped
// at wordWrap columns.
func NewTerminalComposer(w io.Writer, outDir string, wordWrap int) (*TerminalComposer, error) {
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	return &TerminalComposer{w: w, md: md, OutDir: outDir, App: "nexucore", Now: time.Now, used: map[string]bool{}}, nil
}

// Compose writes segs in order.
func (c *TerminalComposer) Compose(segs []segment.Segment) error {
	return segment.Walk(segs, c)
}

func (c *TerminalComposer) VisitText(s segment.Text) error {
	out, err := c.md.Render(s.Content)
	if err != nil {
		logger.L.Warn("Failed to render markdown, writing source", "error", err)
		out = s.Content
	}
	_, err = io.WriteString(c.w, out)
	return err
}

func (c *TerminalComposer) VisitChart(s segment.Chart) error {
	title := s.Spec.Options.Title
	if title == "" {
		title = "untitled"
	}
	line := fmt.Sprintf("[chart] %s (%s, %d records)", title, s.Spec.Type, len(s.Spec.Data))

	if c.OutDir != "" {
		exp, err := c.exporter().Export(s.Spec, chart.FormatSVG)
		if err != nil {
			line += " nothing to draw"
		} else {
			path, err := c.save(exp.Name, exp.Body)
			if err != nil {
				return err
			}
			line += " saved to " + path
		}
	}
	_, err := fmt.Fprintln(c.w, noticeStyle.Render(line))
	return err
}

func (c *TerminalComposer) VisitChartError(s segment.ChartError) error {
	_, err := fmt.Fprintln(c.w, errorStyle.Render(s.Notice))
	return err
}

func (c *TerminalComposer) VisitPreview(s segment.Preview) error {
	if _, err := fmt.Fprintln(c.w, previewStyle.Render(sandbox.Highlight(s.Markup, "terminal256"))); err != nil {
		return err
	}
	if c.OutDir == "" {
		return nil
	}
	exp := sandbox.NewExport(c.App, s.Markup)
	path, err := c.save(c.unique(exp.Name), exp.Body)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.w, noticeStyle.Render("[preview] saved to "+path))
	return err
}

func (c *TerminalComposer) exporter() chart.Exporter {
	now := c.Now
	// Charts exported within the same millisecond would share a name.
	return chart.Exporter{App: c.App, Now: func() time.Time {
		at := now()
		for c.used[chart.ExportName(c.App, chart.FormatSVG, at)] {
			at = at.Add(time.Millisecond)
		}
		return at
	}}
}

// unique suffixes name with -2, -3, ... until it has not been written yet.
func (c *TerminalComposer) unique(name string) string {
	if !c.used[name] {
		return name
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", base, i, ext)
		if !c.used[candidate] {
			return candidate
		}
	}
}

func (c *TerminalComposer) save(name string, body []byte) (string, error) {
	if err := os.MkdirAll(c.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(c.OutDir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	c.used[name] = true
	logger.L.Debug("Saved export", "path", path)
	return path, nil
}
