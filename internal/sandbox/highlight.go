package sandbox

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Highlight formats markup source with syntax colouring. Supported targets
// are "html" (inline-styled <pre>) and "terminal256". Markup is returned
// unchanged if highlighting fails.
func Highlight(markup, target string) string {
	lexer := lexers.Get("html")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	var formatter chroma.Formatter
	switch target {
	case "html":
		formatter = chromahtml.New(chromahtml.WithClasses(false), chromahtml.TabWidth(2))
	default:
		formatter = formatters.Get(target)
		if formatter == nil {
			formatter = formatters.Fallback
		}
	}

	iterator, err := lexer.Tokenise(nil, markup)
	if err != nil {
		return markup
	}
	var sb strings.Builder
	if err := formatter.Format(&sb, style, iterator); err != nil {
		return markup
	}
	return sb.String()
}
