package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metaphox/winzig/parser"
)

const hello = "program p: begin output(1) end p. # done\n"

// execute runs the command line with src on stdin and returns exit status,
// stdout and stderr.
func execute(t *testing.T, src string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(src), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// writeFile writes content to name inside a fresh temp dir and returns the path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func helloTree(t *testing.T) string {
	t.Helper()
	root, err := parser.ParseSource(hello)
	require.NoError(t, err)
	return root.Render(0) + "\n"
}

// ── Tree output ───────────────────────────────────────────────────────────────

func TestRoot_PrintsTree(t *testing.T) {
	path := writeFile(t, "hello.wz", hello)
	want := helloTree(t)

	for _, args := range [][]string{
		{path},
		{"--ast", path},
		{"-ast", path},
		{"parse", path},
	} {
		code, stdout, stderr := execute(t, "", args...)
		assert.Equal(t, 0, code, "args %v: %s", args, stderr)
		assert.Equal(t, want, stdout, "args %v", args)
	}
}

func TestParse_Stdin(t *testing.T) {
	code, stdout, _ := execute(t, hello, "parse", "-")
	assert.Equal(t, 0, code)
	assert.Equal(t, helloTree(t), stdout)
}

func TestParse_Indent(t *testing.T) {
	code, stdout, _ := execute(t, hello, "parse", "--indent", "  ", "-")
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout, "program(7)\n  <identifier>(1)\n    p(0)\n"), stdout)
}

func TestParse_OutputAndCheck(t *testing.T) {
	for _, format := range []string{"text", "json", "yaml", "cbor"} {
		t.Run(format, func(t *testing.T) {
			ext := map[string]string{"text": ".tree", "json": ".json", "yaml": ".yaml", "cbor": ".cbor"}[format]
			out := filepath.Join(t.TempDir(), "hello"+ext)

			code, stdout, stderr := execute(t, hello, "parse", "--format", format, "-o", out, "-")
			require.Equal(t, 0, code, stderr)
			assert.Empty(t, stdout)

			code, stdout, stderr = execute(t, "", "check", out)
			require.Equal(t, 0, code, stderr)
			assert.Equal(t, out+": ok, 14 nodes\n", stdout)
		})
	}
}

func TestCheck_Malformed(t *testing.T) {
	path := writeFile(t, "bad.tree", "program(7)\n.consts(0)\n")
	code, _, stderr := execute(t, "", "check", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "malformed tree")
}

func TestCheck_ExplicitFormat(t *testing.T) {
	code, stdout, stderr := execute(t, `{"label": "exit"}`, "check", "--format", "json", "-")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "<stdin>: ok, 1 nodes\n", stdout)
}

// ── Tokens ────────────────────────────────────────────────────────────────────

func TestTokens(t *testing.T) {
	code, stdout, _ := execute(t, hello, "tokens", "-")
	require.Equal(t, 0, code)

	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	require.Len(t, lines, 12)
	assert.Equal(t, "program : program", lines[0])
	assert.Equal(t, "<identifier> : p", lines[1])
	assert.Equal(t, ": : :", lines[2])
	assert.Equal(t, "<integer> : 1", lines[6])
	assert.Equal(t, "<comment> :  done", lines[11])

	code, stdout, _ = execute(t, hello, "tokens", "--no-comments", "-")
	require.Equal(t, 0, code)
	assert.NotContains(t, stdout, "<comment>")
}

// --ast=false on the root command switches from the tree to the token list.
func TestRoot_AstFalseListsTokens(t *testing.T) {
	path := writeFile(t, "hello.wz", hello)

	code, want, _ := execute(t, "", "tokens", path)
	require.Equal(t, 0, code)

	code, stdout, stderr := execute(t, "", "--ast=false", path)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, want, stdout)
	assert.True(t, strings.HasPrefix(stdout, "program : program\n"), stdout)

	code, stdout, _ = execute(t, "", "--ast=true", path)
	require.Equal(t, 0, code)
	assert.Equal(t, helloTree(t), stdout)
}

// ── Errors ────────────────────────────────────────────────────────────────────

func TestParseError_Diagnostic(t *testing.T) {
	path := writeFile(t, "typo.wz", "program p:\nbegn output(1) end p.\n")
	code, stdout, stderr := execute(t, "", path)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, path+":2:1: expected 'begin', got <identifier> \"begn\"")
	assert.Contains(t, stderr, "\n  begn output(1) end p.\n  ^")
	assert.Contains(t, stderr, "hint: did you mean 'begin'?")
}

func TestLexError_Diagnostic(t *testing.T) {
	code, _, stderr := execute(t, "program p: begin x := $ end p.", "tokens", "-")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "<stdin>:1:23: unexpected character '$'")
}

func TestErrors(t *testing.T) {
	cases := []struct {
		name string
		args []string
		msg  string
	}{
		{"missing file", []string{"parse", filepath.Join(t.TempDir(), "nope.wz")}, "no such file"},
		{"bad format", []string{"parse", "--format", "xml", "-"}, "unknown tree format"},
		{"bad log level", []string{"--log-level", "loud", "parse", "-"}, "log level"},
		{"bad log format", []string{"--log-format", "xml", "parse", "-"}, "unknown log format"},
		{"too many args", []string{"a.wz", "b.wz"}, "accepts at most 1 arg"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, _, stderr := execute(t, hello, tc.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr, tc.msg)
		})
	}
}

// ── Config and logging ────────────────────────────────────────────────────────

func TestConfigFile(t *testing.T) {
	cfg := writeFile(t, "winzig.yaml", "output:\n  format: yaml\n")

	code, stdout, stderr := execute(t, hello, "--config", cfg, "parse", "-")
	require.Equal(t, 0, code, stderr)
	assert.True(t, strings.HasPrefix(stdout, "label: program\n"), stdout)

	// Flags override the file.
	code, stdout, _ = execute(t, hello, "--config", cfg, "parse", "--format", "text", "-")
	require.Equal(t, 0, code)
	assert.Equal(t, helloTree(t), stdout)
}

func TestConfigFile_Invalid(t *testing.T) {
	cfg := writeFile(t, "winzig.toml", "[output]\nformat = \"xml\"\n")
	code, _, stderr := execute(t, hello, "--config", cfg, "parse", "-")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid config")
}

func TestConfigFile_NoHints(t *testing.T) {
	cfg := writeFile(t, "winzig.toml", "[diagnostics]\nhints = false\n")
	code, _, stderr := execute(t, "program p: begn end p.", "--config", cfg, "parse", "-")
	assert.Equal(t, 1, code)
	assert.NotContains(t, stderr, "hint:")
}

func TestDebugLogging(t *testing.T) {
	code, _, stderr := execute(t, hello, "--log-level", "debug", "parse", "-")
	require.Equal(t, 0, code)
	assert.Contains(t, stderr, "msg=lexed")
	assert.Contains(t, stderr, "tokens=12")
	assert.Contains(t, stderr, "msg=parsed")
	assert.Contains(t, stderr, "nodes=14")

	code, _, stderr = execute(t, hello, "--log-level", "debug", "--log-format", "json", "parse", "-")
	require.Equal(t, 0, code)
	assert.Contains(t, stderr, `"msg":"parsed"`)
}

func TestVersion(t *testing.T) {
	code, stdout, _ := execute(t, "", "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "winzig dev")
	assert.Contains(t, stdout, "commit: unknown")
}

func TestHelp(t *testing.T) {
	code, stdout, _ := execute(t, "")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Usage:")
	assert.Contains(t, stdout, "tokens")
}
