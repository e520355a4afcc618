// Package colorize highlights machine-readable output for terminals.
package colorize

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// EnvNoColor disables colouring when set to any value.
const EnvNoColor = "BASEFIND_NO_COLOR"

// ReportDark is the style of colourised reports.
var ReportDark = styles.Register(chroma.MustNewStyle("basefind-dark", chroma.StyleEntries{
	chroma.Text:       "#D4D4D4",
	chroma.Background: "bg:#1e1e1e",

	chroma.NameTag:              "#9CDCFE", // object keys
	chroma.String:               "#EACD53",
	chroma.StringDouble:         "#EACD53",
	chroma.LiteralNumber:        "#FF5F87",
	chroma.LiteralNumberInteger: "#FF5F87",
	chroma.LiteralNumberFloat:   "#FF5F87",
	chroma.KeywordConstant:      "#7C9C9D", // true, false, null
	chroma.Punctuation:          "#858585",
}))

func getStyle() *chroma.Style {
	for _, name := range []string{"basefind-dark", "dracula", "monokai"} {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

func getTerminalFormatter() chroma.Formatter {
	for _, name := range []string{"terminal16m", "terminal256"} {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// Disabled reports whether colouring was turned off through the environment.
func Disabled() bool {
	return os.Getenv(EnvNoColor) != ""
}

// Colorize highlights code with the lexer registered under language. The
// input is returned unchanged when colours are disabled or no lexer exists.
func Colorize(language, code string) (string, error) {
	if Disabled() {
		return code, nil
	}
	lexer := lexers.Get(language)
	if lexer == nil {
		return code, nil
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return code, err
	}
	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getStyle(), iterator); err != nil {
		return code, err
	}
	return buf.String(), nil
}

// ColorizeJSON highlights a JSON document.
func ColorizeJSON(code string) (string, error) {
	return Colorize("json", code)
}
