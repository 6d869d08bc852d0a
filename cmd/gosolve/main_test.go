package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	assert.Equal(t, "gosolve", cmd.Use)
	assert.NotEmpty(t, cmd.Version)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"serve", "solve", "normalize", "version"})

	for _, f := range []string{"config", "log-level", "log-format", "decimal-mode"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(f), f)
	}
}

func TestSolveCmd(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		args []string
		want string
	}{
		{"expression", []string{"solve", "2+3*4"}, "2+3*4 => 14\n"},
		{"equation", []string{"solve", "x+5=10"}, "x+5=10 => x = 5\n"},
		{"root notation", []string{"solve", "(2)#x=3"}, "(2)#x=3 => x = 9\n"},
		{"several", []string{"solve", "x**2 - 4 = 0", "x=x"}, "x**2 - 4 = 0 => x = -2, x = 2\nx=x => True\n"},
		{"system", []string{"solve", "--system", "x+y=5", "x-y=1"}, "x+y=5; x-y=1 => x = 3, y = 2\n"},
		{"batch of one", []string{"solve", "-b", "1", "2=3", "6/4"}, "2=3 => False\n6/4 => 3/2\n"},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			out, err := run(t, "", c.args...)
			require.NoError(t, err)
			assert.Equal(t, c.want, out)
		})
	}
}

func TestSolveCmd_Stdin(t *testing.T) {
	t.Parallel()

	out, err := run(t, "x+1=2\n\n  2*3  \n", "solve")
	require.NoError(t, err)
	assert.Equal(t, "x+1=2 => x = 1\n2*3 => 6\n", out)
}

func TestSolveCmd_Failures(t *testing.T) {
	t.Parallel()

	out, err := run(t, "", "solve", "1+1", "x+5==10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 inputs could not be solved")
	assert.Equal(t, "1+1 => 2\nx+5==10 => error: Invalid input.\n", out)

	_, err = run(t, "", "solve")
	assert.Error(t, err)

	_, err = run(t, "", "solve", "-b", "0", "1")
	assert.Error(t, err)

	_, err = run(t, "", "solve", "-f", "pdf", "1")
	assert.Error(t, err)
}

func TestSolveCmd_StrictDecimals(t *testing.T) {
	t.Parallel()

	out, err := run(t, "", "solve", "3.5")
	require.NoError(t, err)
	assert.Equal(t, "3.5 => 15\n", out)

	out, err = run(t, "", "--decimal-mode", "strict", "solve", "3.5")
	require.Error(t, err)
	assert.Equal(t, "3.5 => error: Invalid input.\n", out)

	_, err = run(t, "", "--decimal-mode", "bogus", "solve", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration error")
}

func TestSolveCmd_Formats(t *testing.T) {
	t.Parallel()

	out, err := run(t, "", "solve", "-f", "json", "x**2 = 2")
	require.NoError(t, err)
	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "x = -(2)#2, x = (2)#2", entries[0]["result"])

	out, err = run(t, "", "solve", "-f", "markdown", "x**2 = 2")
	require.NoError(t, err)
	assert.Contains(t, out, "# gosolve report")
	assert.Contains(t, out, "- `x = (2)#2`")

	out, err = run(t, "", "solve", "-v", "x+5=10")
	require.NoError(t, err)
	assert.Contains(t, out, "    You entered the equation: x+5=10\n")
}

func TestNormalizeCmd(t *testing.T) {
	t.Parallel()

	out, err := run(t, "", "normalize", "(3)#2x", "2(x+1)")
	require.NoError(t, err)
	assert.Equal(t, "(2*x)**(1/3)\n2*(x+1)\n", out)

	out, err = run(t, "", "normalize", "-i", "y + 2x")
	require.NoError(t, err)
	assert.Equal(t, "y, x\n", out)

	_, err = run(t, "", "normalize", "(2)#((3)#x)")
	assert.Error(t, err)

	_, err = run(t, "", "normalize")
	assert.Error(t, err)
}

func TestServeCmd_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := run(t, "", "serve", "--solve-timeout", "0s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration error")

	_, err = run(t, "", "serve", "--config", "does-not-exist.yaml")
	assert.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	assert.NotEmpty(t, getVersion())
	assert.NotEmpty(t, getCommit())
	assert.NotEmpty(t, getDate())

	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "gosolve version "))
	assert.Contains(t, out, "commit:")
}
