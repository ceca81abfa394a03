package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"unicode"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/zephyrtronium/arith"
	"github.com/zephyrtronium/arith/internal/config"
	"github.com/zephyrtronium/arith/internal/repl"
)

// errEvalFailed is returned from the command when any expression given on the
// command line or in an input file fails. Each failure has already been
// reported.
var errEvalFailed = errors.New("evaluation failed")

type flags struct {
	configFile string
	inname     string
	verb       string
	prec       uint
	maxDepth   int
	maxBits    uint
	lines      bool
	echo       bool
	dump       bool
	noColor    bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "arith [expression...]",
		Short: "Evaluate arithmetic expressions safely",
		Long: `arith evaluates arithmetic expressions written in Python syntax: numbers,
+ - * / // % **, unary + and -, and parentheses. Nothing else is accepted, so
evaluating an expression can never run code.

Each argument is evaluated as a separate expression. An argument beginning
with - that is not one of the flags below, like -3+4, starts the expressions;
every argument after it is an expression too. With --in, expressions are read
from a file, or from standard input if the file is -. With no arguments and
no --in, arith starts an interactive calculator.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &f, args)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.configFile, "config", "", "configuration file (default $XDG_CONFIG_HOME/arith/config.toml)")
	fl.StringVar(&f.inname, "in", "", "input file, or - for stdin")
	fl.StringVar(&f.verb, "fmt", "%v", "result formatting string")
	fl.UintVarP(&f.prec, "prec", "p", 0, "precision of float calculations in bits (default 53)")
	fl.IntVar(&f.maxDepth, "max-depth", 0, "maximum expression nesting (default 200)")
	fl.UintVar(&f.maxBits, "max-bits", 0, "maximum size of results in bits (default 1048576)")
	fl.BoolVarP(&f.lines, "lines", "n", false, "treat each input line as a separate expression")
	fl.BoolVar(&f.echo, "echo", false, "print parse trees")
	fl.BoolVar(&f.dump, "dump", false, "dump syntax trees")
	fl.BoolVar(&f.noColor, "no-color", false, "disable colored output")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "log diagnostics to stderr")
	return cmd
}

func main() {
	log.SetFlags(0)
	cmd := newRootCmd()
	cmd.SetArgs(exprArgs(cmd, os.Args[1:]))
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, errEvalFailed) {
			os.Exit(2)
		}
		log.Fatalf("arith: %v", err)
	}
}

// exprArgs inserts "--" before the first argument that looks like a flag but
// is not one of cmd's, so that expressions like -3+4 reach the command as
// arguments.
func exprArgs(cmd *cobra.Command, args []string) []string {
	cmd.InitDefaultHelpFlag()
	fl := cmd.Flags()
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		if len(arg) < 2 || arg[0] != '-' {
			continue
		}
		var f *pflag.Flag
		inline := strings.Contains(arg, "=")
		if strings.HasPrefix(arg, "--") {
			name, _, _ := strings.Cut(arg[2:], "=")
			f = fl.Lookup(name)
			if f == nil && name != "" && unicode.IsLetter(rune(name[0])) {
				// Misspelled flag. Let cobra report it.
				continue
			}
		} else {
			f = fl.ShorthandLookup(arg[1:2])
			inline = len(arg) > 2
		}
		if f == nil {
			r := make([]string, 0, len(args)+1)
			r = append(r, args[:i]...)
			r = append(r, "--")
			return append(r, args[i:]...)
		}
		if f.NoOptDefVal == "" && !inline {
			// The next argument is the flag's value.
			i++
		}
	}
	return args
}

func run(cmd *cobra.Command, f *flags, args []string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	logger := slog.New(slog.DiscardHandler)
	if f.verbose {
		logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	cfg, path, err := config.FindAndLoad(f.configFile)
	if err != nil {
		return err
	}
	if path != "" {
		logger.Debug("loaded config", slog.String("path", path))
	}
	fl := cmd.Flags()
	if fl.Changed("prec") {
		cfg.Prec = f.prec
	}
	if fl.Changed("fmt") {
		cfg.Format = f.verb
	}
	if fl.Changed("max-depth") {
		cfg.MaxDepth = f.maxDepth
	}
	if fl.Changed("max-bits") {
		cfg.MaxBits = f.maxBits
	}
	if f.noColor {
		cfg.Color = config.ColorNever
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	switch cfg.Color {
	case config.ColorAlways:
		color.NoColor = false
	case config.ColorNever:
		color.NoColor = true
	}

	ev := &evaluator{
		ctx:   arith.NewContext(arith.Prec(cfg.Prec), arith.MaxBits(cfg.MaxBits)),
		popts: []arith.ParseOption{arith.MaxDepth(cfg.MaxDepth)},
		verb:  cfg.Format,
		echo:  f.echo,
		dump:  f.dump,
		log:   logger,
	}
	logger.Debug("settings",
		slog.Uint64("prec", uint64(ev.ctx.Prec())),
		slog.Uint64("max_bits", uint64(ev.ctx.MaxBits())),
		slog.String("format", ev.verb),
	)

	failed := false
	report := func(where string, err error) {
		failed = true
		fmt.Fprintln(stderr, "arith:", color.RedString("error:"), where+err.Error())
	}
	if f.inname != "" {
		in := cmd.InOrStdin()
		if f.inname != "-" {
			file, err := os.Open(f.inname)
			if err != nil {
				return err
			}
			defer file.Close()
			in = file
		}
		if err := ev.batch(in, stdout, f.lines, report); err != nil {
			return fmt.Errorf("reading %s: %w", f.inname, err)
		}
	}
	for _, arg := range args {
		r, err := ev.Eval(arg)
		if err != nil {
			report("", err)
			continue
		}
		fmt.Fprintln(stdout, r)
	}
	if failed {
		return errEvalFailed
	}
	if f.inname != "" || len(args) != 0 {
		return nil
	}

	loop := &repl.REPL{
		Eval:   ev,
		Prompt: cfg.Prompt,
		Banner: cfg.Banner,
		Log:    logger,
	}
	in := cmd.InOrStdin()
	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		logger.Debug("starting terminal REPL")
		return loop.RunTerminal(int(file.Fd()), stdio{in, stdout})
	}
	return loop.Run(in, stdout)
}

// stdio joins the terminal's input and output.
type stdio struct {
	io.Reader
	io.Writer
}

// batch evaluates an input file. If lines is set, each non-blank line is a
// separate expression; otherwise the entire input is one expression.
func (e *evaluator) batch(in io.Reader, out io.Writer, lines bool, report func(string, error)) error {
	if !lines {
		b, err := io.ReadAll(in)
		if err != nil {
			return err
		}
		r, err := e.Eval(string(b))
		if err != nil {
			report("", err)
			return nil
		}
		fmt.Fprintln(out, r)
		return nil
	}
	br := bufio.NewReader(in)
	for n := 1; ; n++ {
		line, err := br.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			r, err := e.Eval(strings.TrimRight(line, "\r\n"))
			if err != nil {
				report(fmt.Sprintf("line %d: ", n), err)
			} else {
				fmt.Fprintln(out, r)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
