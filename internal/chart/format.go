package chart

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// tickFormat returns a formatter for linear tick values: digit grouping, a
// fixed number of decimals derived from the tick step, and a typographic
// minus sign.
func tickFormat(step float64) func(float64) string {
	precision := 0
	if step > 0 && !math.IsInf(step, 0) {
		precision = max(0, -int(math.Floor(math.Log10(step))))
	}
	verb := fmt.Sprintf("%%.%df", precision)
	return func(v float64) string {
		if v == 0 {
			v = 0
		}
		s := printer.Sprintf(verb, v)
		if strings.HasPrefix(s, "-") {
			s = "−" + s[1:]
		}
		return s
	}
}
