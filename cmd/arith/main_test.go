package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// execute runs the command with an empty config directory.
func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	cmd := newRootCmd()
	var o, e bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&o)
	cmd.SetErr(&e)
	cmd.SetArgs(exprArgs(cmd, args))
	err = cmd.Execute()
	return o.String(), e.String(), err
}

func TestArgs(t *testing.T) {
	cases := []struct {
		name string
		args []string
		out  string
	}{
		{"add", []string{"1 + 2"}, "3\n"},
		{"many", []string{"7 / 2", "2 ** 100"}, "3.5\n1267650600228229401496703205376\n"},
		{"dash", []string{"--", "-2 ** 2"}, "-4\n"},
		{"negadd", []string{"-3+4"}, "1\n"},
		{"neg", []string{"-3"}, "-3\n"},
		{"negparen", []string{"-(1+2)*3"}, "-9\n"},
		{"negneg", []string{"--3"}, "3\n"},
		{"negfloat", []string{"-.5"}, "-0.5\n"},
		{"flagsfirst", []string{"-p", "200", "--fmt", "%x", "-255"}, "-ff\n"},
		{"flaginline", []string{"--fmt=%x", "-255", "16"}, "-ff\n10\n"},
		{"negthenmore", []string{"-1", "-2"}, "-1\n-2\n"},
		{"floordiv", []string{"--", "-7 // 2", "-7 % 2"}, "-4\n1\n"},
		{"fmt", []string{"--fmt", "%.3f", "1/3"}, "0.333\n"},
		{"hex", []string{"--fmt", "%x", "255"}, "ff\n"},
		{"echo", []string{"--echo", "1+2*3"}, "((1) + ((2) * (3))) : 7\n"},
		{"maxdepth", []string{"--max-depth", "10", "(((1)))"}, "1\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, errs, err := execute(t, "", c.args...)
			require.NoError(t, err)
			assert.Equal(t, c.out, out)
			assert.Empty(t, errs)
		})
	}
}

func TestArgsErrors(t *testing.T) {
	cases := []struct {
		name string
		args []string
		out  string
		msg  string
	}{
		{"zero", []string{"1 / 0"}, "", "arith: error: 3: division by zero\n"},
		{"unsupported", []string{"__import__('os')"}, "", "arith: error: 1: unsupported function call: \"__import__\"\n"},
		{"partial", []string{"1 + 1", "2 +", "3"}, "2\n3\n", "arith: error:"},
		{"maxbits", []string{"--max-bits", "64", "2 ** 100"}, "", "too large"},
		{"maxdepth", []string{"--max-depth", "2", "(((1)))"}, "", "arith: error:"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, errs, err := execute(t, "", c.args...)
			assert.ErrorIs(t, err, errEvalFailed)
			assert.Equal(t, c.out, out)
			assert.Contains(t, errs, c.msg)
		})
	}
}

func TestExprArgs(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want []string
	}{
		{"none", nil, nil},
		{"plain", []string{"1+2"}, []string{"1+2"}},
		{"neg", []string{"-3+4"}, []string{"--", "-3+4"}},
		{"later", []string{"1", "-2"}, []string{"1", "--", "-2"}},
		{"value", []string{"-p", "200", "-1"}, []string{"-p", "200", "--", "-1"}},
		{"valueneg", []string{"--fmt", "-%v", "1"}, []string{"--fmt", "-%v", "1"}},
		{"inline", []string{"-p200", "--fmt=%v", "-1"}, []string{"-p200", "--fmt=%v", "--", "-1"}},
		{"bool", []string{"-n", "-v", "--echo", "-1"}, []string{"-n", "-v", "--echo", "--", "-1"}},
		{"help", []string{"-h"}, []string{"-h"}},
		{"dashdash", []string{"--", "-1"}, []string{"--", "-1"}},
		{"misspelled", []string{"--bogus", "1"}, []string{"--bogus", "1"}},
		{"negneg", []string{"--3"}, []string{"--", "--3"}},
		{"stdin", []string{"--in", "-", "-n"}, []string{"--in", "-", "-n"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, exprArgs(newRootCmd(), c.args))
		})
	}
}

func TestPrec(t *testing.T) {
	out, _, err := execute(t, "", "1/3")
	require.NoError(t, err)
	assert.Equal(t, "0.3333333333333333\n", out)
	out, _, err = execute(t, "", "-p", "200", "1/3")
	require.NoError(t, err)
	assert.Greater(t, len(out), 50)
	assert.True(t, strings.HasPrefix(out, "0.33333333333333333333"), "%q", out)
}

func TestDump(t *testing.T) {
	out, _, err := execute(t, "", "--dump", "1 + 2")
	require.NoError(t, err)
	assert.Contains(t, out, "arith.BinaryOp")
	assert.Contains(t, out, "arith.NumberLiteral")
	assert.True(t, strings.HasSuffix(out, "\n3\n"), "%q", out)
}

func TestInput(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "exprs.txt")
	require.NoError(t, os.WriteFile(name, []byte("1+1\n\n2*3\nspam\n4\n"), 0o644))

	out, errs, err := execute(t, "", "--in", name, "-n")
	assert.ErrorIs(t, err, errEvalFailed)
	assert.Equal(t, "2\n6\n4\n", out)
	assert.Equal(t, "arith: error: line 4: 1: unsupported name: \"spam\"\n", errs)

	// Without -n, the whole input is one expression.
	out, errs, err = execute(t, "1 +\n  2\n", "--in", "-")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
	assert.Empty(t, errs)

	_, _, err = execute(t, "", "--in", filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, errEvalFailed)
}

func TestLongLines(t *testing.T) {
	long := strings.Repeat("1+", 40000) + "1"
	out, errs, err := execute(t, long+"\n"+long+")\n2\n", "--in", "-", "-n")
	assert.ErrorIs(t, err, errEvalFailed)
	assert.Equal(t, "40001\n2\n", out)
	assert.Contains(t, errs, "line 2: ")

	out, _, err = execute(t, long+"\n")
	require.NoError(t, err)
	assert.Equal(t, "40001\n", out)
}

func TestREPL(t *testing.T) {
	out, _, err := execute(t, "1+1\n\n2 +\nhelp\nquit\n3\n")
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "2", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Error: "), "%q", lines[1])
	assert.Contains(t, out, "Type 'quit' or 'exit' to stop.")
	assert.NotContains(t, out, "calc> ")
	assert.False(t, strings.HasSuffix(out, "3\n"))
}

func TestConfig(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(name, []byte("format = \"%.2f\"\nmax_bits = 64\n"), 0o644))

	out, _, err := execute(t, "", "--config", name, "1/3")
	require.NoError(t, err)
	assert.Equal(t, "0.33\n", out)

	// Flags override the file.
	out, _, err = execute(t, "", "--config", name, "--fmt", "%v", "--max-bits", "1000", "1/3", "2**100")
	require.NoError(t, err)
	assert.Equal(t, "0.3333333333333333\n1267650600228229401496703205376\n", out)

	_, errs, err := execute(t, "", "--config", name, "2**100")
	assert.ErrorIs(t, err, errEvalFailed)
	assert.Contains(t, errs, "too large")
}

func TestConfigErrors(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name string
		toml string
		args []string
	}{
		{"color", "color = \"sometimes\"\n", nil},
		{"format", "format = \"v\"\n", nil},
		{"unknown", "precision = 3\n", nil},
		{"syntax", "format = \n", nil},
		{"flag", "", []string{"--fmt", "x"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			name := filepath.Join(dir, c.name+".toml")
			require.NoError(t, os.WriteFile(name, []byte(c.toml), 0o644))
			args := append([]string{"--config", name}, c.args...)
			out, _, err := execute(t, "", append(args, "1")...)
			require.Error(t, err)
			assert.NotErrorIs(t, err, errEvalFailed)
			assert.Empty(t, out)
		})
	}

	_, _, err := execute(t, "", "--config", filepath.Join(dir, "missing.toml"), "1")
	require.Error(t, err)
	_, _, err = execute(t, "", "--bogus", "1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errEvalFailed)
}

func TestVerbose(t *testing.T) {
	out, errs, err := execute(t, "", "-v", "6*7")
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)
	assert.Contains(t, errs, "level=DEBUG")
	assert.Contains(t, errs, "result=42")
}
