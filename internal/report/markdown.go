package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
)

// MarkdownWriter writes a summary table followed by one section per entry.
type MarkdownWriter struct {
	out io.Writer
}

func NewMarkdownWriter(out io.Writer) *MarkdownWriter {
	return &MarkdownWriter{out: out}
}

func (w *MarkdownWriter) Write(entries []Entry) error {
	md := markdown.NewMarkdown(w.out)

	md.H1("gosolve report")
	md.PlainText("")
	w.writeSummary(md, entries)

	for i, e := range entries {
		w.writeEntry(md, i+1, e)
	}
	return md.Build()
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, entries []Entry) {
	rows := make([][]string, len(entries))
	failed := 0
	for i, e := range entries {
		var shape, result string
		if e.Err != nil {
			failed++
			shape = "error"
			result, _ = describe(e.Err)
		} else {
			shape = e.Result.Shape.Name()
			result = code(e.Result.Display)
		}
		rows[i] = []string{strconv.Itoa(i + 1), code(strings.Join(e.Inputs, "; ")), shape, result}
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Input", "Shape", "Result"},
		Rows:   rows,
	})
	md.PlainText("")

	if failed > 0 {
		md.Cautionf("%d of %d inputs could not be solved.", failed, len(entries))
	} else {
		md.Tip("Every input was solved.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeEntry(md *markdown.Markdown, n int, e Entry) {
	md.H2(strconv.Itoa(n) + ". " + strings.Join(e.Inputs, "; "))
	md.PlainText("")

	if e.Err != nil {
		msg, explanation := describe(e.Err)
		md.PlainText("**" + msg + "**")
		md.PlainText("")
		md.Details("Explanation", explanation)
		md.PlainText("")
		return
	}

	res := e.Result
	if len(res.Lines) > 0 {
		items := make([]string, len(res.Lines))
		for i, l := range res.Lines {
			items[i] = code(l)
		}
		md.BulletList(items...)
	} else {
		md.PlainText(code(res.Display))
	}
	md.PlainText("")
	md.Note("Normalized: " + code(strings.Join(res.Normalized, "; ")))
	md.PlainText("")
	md.Details("Explanation", res.Explanation)
	md.PlainText("")
}

func code(s string) string { return "`" + s + "`" }
