// Package agent exposes the arena's ledgers and price archive to a
// generative model through callable tools, and runs the interactive
// session around it.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

// Agent is the interactive assistant driving one trading expert.
type Agent struct {
	w      io.Writer
	r      *bufio.Reader
	Trader *Expert
}

// New creates a new Agent around the desk's trading expert, writing to w
// and reading user input from r.
func New(w io.Writer, r io.Reader, desk *Desk) *Agent {
	return &Agent{
		w:      w,
		r:      bufio.NewReader(r),
		Trader: desk.Trader(),
	}
}

const prompt = "trade> "

// Run starts the interactive REPL session. Initial prompts, if any, are
// consumed before reading from the user.
func (a *Agent) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if a.Trader.chat == nil {
		if err := a.Trader.Start(ctx, client); err != nil {
			return err
		}
	}

	fmt.Fprintln(a.w, "Welcome to the wsoa trading assistant. Type 'bye' to exit.")

	for {
		fmt.Fprint(a.w, prompt)
		var input string

		if len(prompts) > 0 {
			input, prompts = prompts[0], prompts[1:]
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
			fmt.Fprintln(a.w, input)
		} else {
			var err error
			input, err = a.r.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return nil // Clean exit on Ctrl+D
				}
				return err
			}
		}

		if strings.TrimSpace(input) == "bye" {
			return nil
		}

		content, err := a.Trader.Ask(ctx, &genai.Part{Text: input})
		if err != nil {
			fmt.Fprintf(a.w, "error: %v\n", err)
			continue
		}
		for _, part := range content.Parts {
			if part.Text != "" {
				fmt.Fprintln(a.w, part.Text)
			}
		}
	}
}
