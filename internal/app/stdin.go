package app

import (
	"bufio"
	"context"
	"io"
	"os"

	"golang.org/x/term"
)

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// monitorStdin requests a statistics report every time the 'Enter' key is
// pressed. It returns when r is exhausted or ctx is done.
func monitorStdin(ctx context.Context, r io.Reader, requests chan<- struct{}) {
	reader := bufio.NewReader(r)
	for {
		input, err := reader.ReadString('\n')

		if input == "\n" || input == "\r\n" {
			select {
			case requests <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}

		if err != nil {
			return
		}
	}
}
