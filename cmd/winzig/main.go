// Command winzig lexes and parses WinZig programs and prints the token stream
// or the syntax tree.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/metaphox/winzig/internal/config"
	"github.com/metaphox/winzig/treefmt"
)

// Build-time variables - can be set via ldflags
var (
	Version   string = "dev"
	BuildTime string = "unknown"
	GitCommit string = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// app carries flag values and the state PersistentPreRunE sets up for the
// subcommands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// Global flags
	configFile string
	logLevel   string
	logFormat  string

	// Output flags, shared by the root command and parse
	ast        bool
	format     string
	indent     string
	outputPath string

	cfg config.Config
	log *slog.Logger
}

// reportedError is an error whose diagnostic has already been written to
// stderr; run only turns it into an exit status.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// run executes the command line in args and returns the process exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	root := newRootCmd(a)
	root.SetArgs(normalizeArgs(args))
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		var rep *reportedError
		if !errors.As(err, &rep) {
			fmt.Fprintf(stderr, "winzig: %v\n", err)
		}
		return 1
	}
	return 0
}

// normalizeArgs accepts the single-dash "-ast" spelling of --ast.
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		if arg == "-ast" {
			arg = "--ast"
		}
		out[i] = arg
	}
	return out
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "winzig [--ast] <file>",
		Short: "Parse WinZig programs into syntax trees",
		Long: `winzig is the front end of a WinZig compiler. It tokenizes a source file,
parses it with the full WinZig grammar and prints the resulting syntax tree,
one node per line as label(childCount), indented by depth.

Use "-" as the file name to read from standard input. With --ast=false the
root command lists the tokens instead, as the tokens command does.`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			if !a.ast {
				return a.tokensCommand(cmd, args)
			}
			return a.parseCommand(cmd, args)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "Path to a config file (default: .winzig.toml/.yaml in the working directory)")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&a.logFormat, "log-format", "", "Log format: text or json")

	a.addOutputFlags(root)
	root.Flags().BoolVar(&a.ast, "ast", true, "Print the syntax tree; --ast=false lists tokens instead")

	root.AddCommand(newParseCmd(a))
	root.AddCommand(newTokensCmd(a))
	root.AddCommand(newCheckCmd(a))
	root.AddCommand(newVersionCmd(a))
	return root
}

func (a *app) addOutputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&a.format, "format", "", "Tree format: text, json, yaml, cbor")
	f.StringVar(&a.indent, "indent", "", "Indent unit for the text format (default \".\")")
	f.StringVarP(&a.outputPath, "output", "o", "", "Write the tree to this file instead of stdout")
}

// setup loads the config file and builds the logger. Flags given on the
// command line override config values.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.cfg = config.Default()
	path := a.configFile
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path, _ = config.Discover(wd)
		}
	}
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	if a.logLevel != "" {
		a.cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		a.cfg.Log.Format = a.logFormat
	}
	if a.format != "" {
		a.cfg.Output.Format = a.format
	}
	if a.indent != "" {
		a.cfg.Output.Indent = a.indent
	}

	logger, err := newLogger(a.stderr, a.cfg.Log)
	if err != nil {
		return err
	}
	a.log = logger
	if path != "" {
		a.log.Debug("loaded config", "path", path)
	}
	return nil
}

func newLogger(w io.Writer, lc config.Log) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", lc.Level, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(lc.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want text or json)", lc.Format)
	}
}

// treeFormat resolves the configured output format.
func (a *app) treeFormat() (treefmt.Format, error) {
	return treefmt.ParseFormat(a.cfg.Output.Format)
}
