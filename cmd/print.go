package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
)

// printMarkdown renders markdown for the terminal. When rendering is not
// possible the raw markdown is still printed.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		fmt.Fprintf(os.Stderr, "markdown rendering failed: %v\n", err)
		return
	}
	fmt.Print(out)
}
