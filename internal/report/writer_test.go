package report_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gosolve/internal/report"
	"github.com/njchilds90/gosolve/notation"
	"github.com/njchilds90/gosolve/solver"
	"github.com/njchilds90/gosolve/symbolic"
)

func testEntries(t *testing.T) []report.Entry {
	t.Helper()
	o := solver.New(symbolic.NewEngine(), notation.NewNormalizer(notation.Options{}), nil)

	var entries []report.Entry
	for _, in := range []string{"x**2 - 4 = 0", "2+3*4", "x+5==10"} {
		res, err := o.Solve(context.Background(), in)
		entries = append(entries, report.Entry{Inputs: []string{in}, Result: res, Err: err})
	}
	return entries
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, f := range report.Formats {
		w, err := report.New(f, &bytes.Buffer{})
		require.NoError(t, err, f)
		assert.NotNil(t, w)
	}
	_, err := report.New("pdf", &bytes.Buffer{})
	assert.ErrorIs(t, err, report.ErrUnknownFormat)
}

func TestTextWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, report.NewTextWriter(&buf, false).Write(testEntries(t)))
		assert.Equal(t,
			"x**2 - 4 = 0 => x = -2, x = 2\n"+
				"2+3*4 => 14\n"+
				"x+5==10 => error: Invalid input.\n",
			buf.String())
	})

	t.Run("verbose", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, report.NewTextWriter(&buf, true).Write(testEntries(t)))
		out := buf.String()
		assert.Contains(t, out, "    The solutions for the equation are:\n")
		assert.Contains(t, out, "    Result of the calculation: 2+3*4 = 14\n")
		assert.Contains(t, out, "    Please try entering basic arithmetic")
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, report.NewJSONWriter(&buf).Write(testEntries(t)))

	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 3)

	assert.Equal(t, true, out[0]["success"])
	assert.Equal(t, "SingleVariableSolutions", out[0]["shape"])
	assert.Equal(t, "x = -2, x = 2", out[0]["result"])
	assert.Equal(t, []interface{}{"x**2-4=0"}, out[0]["normalized"])

	assert.Equal(t, false, out[2]["success"])
	assert.Equal(t, "Invalid input.", out[2]["message"])
	assert.NotContains(t, out[2], "result")
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, report.NewMarkdownWriter(&buf).Write(testEntries(t)))
	out := buf.String()

	assert.Contains(t, out, "# gosolve report")
	assert.Contains(t, out, "Shape")
	assert.Contains(t, out, "SingleVariableSolutions")
	assert.Contains(t, out, "`x = -2, x = 2`")
	assert.Contains(t, out, "## 1. x**2 - 4 = 0")
	assert.Contains(t, out, "- `x = -2`")
	assert.Contains(t, out, "**Invalid input.**")
	assert.Contains(t, out, "1 of 3 inputs could not be solved.")
}

func TestMarkdownWriter_AllSolved(t *testing.T) {
	t.Parallel()

	entries := testEntries(t)[:2]
	var buf bytes.Buffer
	require.NoError(t, report.NewMarkdownWriter(&buf).Write(entries))
	assert.Contains(t, buf.String(), "Every input was solved.")
	assert.Contains(t, buf.String(), "Normalized: `2+3*4`")
}
