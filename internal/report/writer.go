// Package report writes solve results for the command line in text, JSON
// or Markdown.
package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/njchilds90/gosolve/solver"
)

// ErrUnknownFormat is returned by New for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown report format")

// Formats lists the names accepted by New.
var Formats = []string{"text", "json", "markdown"}

// Entry is one solved input. Exactly one of Result and Err is set.
type Entry struct {
	Inputs []string
	Result *solver.Result
	Err    error
}

// Writer writes a batch of entries.
type Writer interface {
	Write(entries []Entry) error
}

// New returns the Writer for format.
func New(format string, out io.Writer) (Writer, error) {
	switch format {
	case "text", "":
		return NewTextWriter(out, false), nil
	case "json":
		return NewJSONWriter(out), nil
	case "markdown", "md":
		return NewMarkdownWriter(out), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

type explainer interface {
	Message() string
	Explanation() string
}

// describe returns the short message and explanation of err.
func describe(err error) (string, string) {
	var ex explainer
	if errors.As(err, &ex) {
		return ex.Message(), ex.Explanation()
	}
	return "An unexpected error occurred.", err.Error()
}
