package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/metaphox/winzig/ast"
	"github.com/metaphox/winzig/internal/diag"
	"github.com/metaphox/winzig/lexer"
	"github.com/metaphox/winzig/parser"
	"github.com/metaphox/winzig/treefmt"
)

func newParseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a program and print its syntax tree",
		Args:  cobra.ExactArgs(1),
		RunE:  a.parseCommand,
	}
	a.addOutputFlags(cmd)
	return cmd
}

func newTokensCmd(a *app) *cobra.Command {
	var noComments bool
	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream of a program, one token per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noComments {
				a.cfg.Tokens.Comments = false
			}
			return a.tokensCommand(cmd, args)
		},
	}
	cmd.Flags().BoolVar(&noComments, "no-comments", false, "Leave comment tokens out of the listing")
	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <tree-file>",
		Short: "Validate a tree written by parse",
		Long: `check reads a tree in any output format and verifies that every node
carries the number of children it claims and names a known rule.

The format is taken from --format, then from the file extension
(.json, .yaml, .yml, .cbor), and is text otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: a.checkCommand,
	}
	cmd.Flags().StringVar(&a.format, "format", "", "Tree format: text, json, yaml, cbor")
	cmd.Flags().StringVar(&a.indent, "indent", "", "Indent unit for the text format (default \".\")")
	return cmd
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "winzig %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", GitCommit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", BuildTime)
		},
	}
}

// readInput returns the display name and contents of path, reading stdin
// when path is "-".
func (a *app) readInput(path string) (string, []byte, error) {
	if path == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", nil, fmt.Errorf("read stdin: %w", err)
		}
		return "<stdin>", data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	return path, data, nil
}

// report writes a diagnostic for err against src and marks err as reported.
func (a *app) report(name string, src []byte, err error) error {
	pr := diag.Printer{Name: name, Source: string(src), Hints: a.cfg.Diagnostics.Hints}
	fmt.Fprintln(a.stderr, pr.Format(err))
	return &reportedError{err: err}
}

func (a *app) parseCommand(cmd *cobra.Command, args []string) error {
	format, err := a.treeFormat()
	if err != nil {
		return err
	}
	name, src, err := a.readInput(args[0])
	if err != nil {
		return err
	}

	start := time.Now()
	tokens, err := lexer.Tokenize(string(src))
	if err != nil {
		return a.report(name, src, err)
	}
	a.log.Debug("lexed", "file", name, "tokens", len(tokens), "elapsed", time.Since(start))

	start = time.Now()
	root, err := parser.Parse(tokens)
	if err != nil {
		return a.report(name, src, err)
	}
	a.log.Debug("parsed", "file", name, "nodes", countNodes(root), "elapsed", time.Since(start))

	return a.writeTree(cmd, root, format)
}

func (a *app) writeTree(cmd *cobra.Command, root *ast.Node, format treefmt.Format) error {
	if a.outputPath == "" {
		return treefmt.Encode(cmd.OutOrStdout(), root, format, a.cfg.Output.Indent)
	}

	var buf bytes.Buffer
	if err := treefmt.Encode(&buf, root, format, a.cfg.Output.Indent); err != nil {
		return err
	}
	if err := os.WriteFile(a.outputPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	a.log.Info("wrote tree", "path", a.outputPath, "format", format, "bytes", buf.Len())
	return nil
}

func (a *app) tokensCommand(cmd *cobra.Command, args []string) error {
	name, src, err := a.readInput(args[0])
	if err != nil {
		return err
	}
	tokens, err := lexer.Tokenize(string(src))
	if err != nil {
		return a.report(name, src, err)
	}
	a.log.Debug("lexed", "file", name, "tokens", len(tokens))

	w := cmd.OutOrStdout()
	for _, tok := range tokens {
		if tok.Type.IsComment() && !a.cfg.Tokens.Comments {
			continue
		}
		fmt.Fprintf(w, "%s : %s\n", tok.Type, tok.Literal)
	}
	return nil
}

func (a *app) checkCommand(cmd *cobra.Command, args []string) error {
	name, data, err := a.readInput(args[0])
	if err != nil {
		return err
	}

	format := treefmt.Text
	switch {
	case a.format != "":
		if format, err = treefmt.ParseFormat(a.format); err != nil {
			return err
		}
	default:
		format = formatForPath(name)
	}

	var root *ast.Node
	if format == treefmt.Text {
		root, err = treefmt.ReadText(bytes.NewReader(data), a.cfg.Output.Indent)
	} else {
		root, err = treefmt.Unmarshal(data, format)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok, %d nodes\n", name, countNodes(root))
	return nil
}

// formatForPath guesses a tree format from a file extension.
func formatForPath(path string) treefmt.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return treefmt.JSON
	case ".yaml", ".yml":
		return treefmt.YAML
	case ".cbor":
		return treefmt.CBOR
	default:
		return treefmt.Text
	}
}

func countNodes(root *ast.Node) int {
	n := 0
	root.Walk(func(*ast.Node, int) bool {
		n++
		return true
	})
	return n
}
