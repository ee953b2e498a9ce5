package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

// failurePrefixes mark answers that report a failure rather than a result.
var failurePrefixes = []string{
	"Agent invocation failed:",
	"Failed to create dining plan:",
	"Search failed:",
	"Scraping failed:",
}

// printAnswer writes text to w, rendering markdown unless raw is set.
func printAnswer(w io.Writer, title, text string, raw bool) {
	if isFailure(text) {
		fmt.Fprintln(w, red(text))
		return
	}
	fmt.Fprintln(w, bold(green(title)))
	if raw {
		fmt.Fprintln(w, text)
		return
	}
	fmt.Fprint(w, renderMarkdown(text))
}

func renderMarkdown(text string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return text + "\n"
	}
	out, err := renderer.Render(text)
	if err != nil {
		return text + "\n"
	}
	return out
}

func isFailure(text string) bool {
	for _, prefix := range failurePrefixes {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return false
}
