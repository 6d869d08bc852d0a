package report

import (
	"fmt"
	"io"
	"strings"
)

// TextWriter prints one line per result, and the explanation when verbose.
type TextWriter struct {
	out     io.Writer
	verbose bool
}

func NewTextWriter(out io.Writer, verbose bool) *TextWriter {
	return &TextWriter{out: out, verbose: verbose}
}

func (w *TextWriter) Write(entries []Entry) error {
	for i, e := range entries {
		if i > 0 && w.verbose {
			if _, err := fmt.Fprintln(w.out); err != nil {
				return err
			}
		}
		if err := w.writeEntry(e); err != nil {
			return err
		}
	}
	return nil
}

func (w *TextWriter) writeEntry(e Entry) error {
	input := strings.Join(e.Inputs, "; ")
	var b strings.Builder
	if e.Err != nil {
		msg, explanation := describe(e.Err)
		fmt.Fprintf(&b, "%s => error: %s\n", input, msg)
		if w.verbose {
			b.WriteString(indent(explanation))
		}
	} else {
		fmt.Fprintf(&b, "%s => %s\n", input, e.Result.Display)
		if w.verbose {
			b.WriteString(indent(e.Result.Explanation))
		}
	}
	_, err := io.WriteString(w.out, b.String())
	return err
}

func indent(s string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		b.WriteString("    ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
