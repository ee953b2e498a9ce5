package sanitize

import (
	"math/rand"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "plain text untouched", input: "Here are three restaurants.", expected: "Here are three restaurants."},
		{name: "thinking span removed", input: "<thinking>pick search</thinking>Found 3 places.", expected: "Found 3 places."},
		{name: "thinking span across lines", input: "Start\n<thinking>line one\nline two</thinking>\nEnd", expected: "Start\n\nEnd"},
		{name: "non-greedy spans", input: "<thinking>a</thinking>keep<thinking>b</thinking>", expected: "keep"},
		{name: "nested markers", input: "<thinking>outer <thinking>inner</thinking> tail</thinking>answer", expected: "answer"},
		{name: "unclosed outer marker kept", input: "<thinking>a<thinking>b</thinking>c", expected: "<thinking>ac"},
		{name: "unclosed marker kept", input: "<thinking>no end", expected: "<thinking>no end"},
		{name: "escaped newlines", input: `line one\nline two`, expected: "line one\nline two"},
		{name: "leading indentation stripped", input: "  **Menu**\n\t- Lasagna\n    - Salad", expected: "**Menu**\n- Lasagna\n- Salad"},
		{name: "three blank lines collapse", input: "a\n\n\n\nb", expected: "a\n\nb"},
		{name: "whitespace-only lines collapse", input: "a\n   \n \t \n\nb", expected: "a\n\nb"},
		{name: "single blank line kept", input: "a\n\nb", expected: "a\n\nb"},
		{name: "outer trim", input: "\n\n   hello   \n\n", expected: "hello"},
		{name: "crlf normalised", input: "a\r\n\r\n\r\n\r\nb", expected: "a\n\nb"},
		{name: "repeated carriage returns normalised", input: "a\r\r\nb", expected: "a\nb"},
		{name: "mixed carriage return runs", input: "a\r\r\r\n\r\nb", expected: "a\n\nb"},
		{name: "bare carriage return kept mid-line", input: "a\rb", expected: "a\rb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Sanitize(tt.input))
		})
	}
}

var (
	markerSpan      = regexp.MustCompile(`(?s)<thinking>.*?</thinking>`)
	indentedLine    = regexp.MustCompile(`(?m)^[ \t]`)
	threeBlankLines = regexp.MustCompile(`\n\s*\n\s*\n\s*\n`)
)

func randomText(r *rand.Rand) string {
	pieces := []string{
		"<thinking>", "</thinking>", `\n`, "\n", "\n\n\n", " ", "\t", "  ", "\r\n", "\r\r\n", "\r",
		"menu", "Toronto", "13%", "**", "-", "é", "\\", "n", "<", ">", "thinking",
	}
	var b strings.Builder
	for i := 0; i < r.Intn(40); i++ {
		b.WriteString(pieces[r.Intn(len(pieces))])
	}
	return b.String()
}

func TestSanitizeProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		input := randomText(r)
		once := Sanitize(input)

		if twice := Sanitize(once); twice != once {
			t.Fatalf("not idempotent for %q: %q then %q", input, once, twice)
		}
		if markerSpan.MatchString(once) {
			t.Fatalf("marker span left in %q (input %q)", once, input)
		}
		if indentedLine.MatchString(once) {
			t.Fatalf("indented line in %q (input %q)", once, input)
		}
		if threeBlankLines.MatchString(once) {
			t.Fatalf("blank-line run in %q (input %q)", once, input)
		}
	}
}
