// Command bc is an arbitrary-precision calculator implementing the BC
// infix language. Its flag surface and run loop follow
// _examples/robpike-ivy/ivy.go's shape (a small flag set feeding a run()
// loop over each source), reworked onto github.com/urfave/cli the way
// _examples/chriskillpack-bbcdisasm/cmd/bbcdisasm/main.go builds its
// cli.App, per spec §6's external CLI surface (BC_ENV_ARGS, -e, positional
// files, stdin fallback, exit codes 0/1/2).
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli"

	"github.com/blinksh/bc/internal/bcerr"
	"github.com/blinksh/bc/internal/bytecode"
	"github.com/blinksh/bc/internal/config"
	"github.com/blinksh/bc/internal/env"
	"github.com/blinksh/bc/internal/lexer"
	"github.com/blinksh/bc/internal/parser"
	"github.com/blinksh/bc/internal/repl"
	"github.com/blinksh/bc/internal/vm"
)

func main() {
	app := cli.NewApp()
	app.Name = "bc"
	app.Usage = "an arbitrary-precision calculator language"
	app.ArgsUsage = "[file ...]"
	app.Flags = []cli.Flag{
		cli.StringSliceFlag{Name: "e", Usage: "execute inline `EXPR`"},
		cli.BoolFlag{Name: "i", Usage: "force interactive mode"},
		cli.BoolFlag{Name: "l", Usage: "set scale to 20 (no math library functions are defined)"},
		cli.BoolFlag{Name: "q, quiet", Usage: "suppress the startup banner"},
		cli.BoolFlag{Name: "s, posix", Usage: "warn on non-POSIX constructs"},
	}
	app.Action = runBC

	prependEnvArgs()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "bc: %s\n", err)
		os.Exit(2)
	}
}

// prependEnvArgs splices BC_ENV_ARGS into os.Args ahead of whatever the
// user typed, per spec §6 ("Environment variable BC_ENV_ARGS is prepended
// to the argument list").
func prependEnvArgs() {
	envArgs := strings.Fields(os.Getenv("BC_ENV_ARGS"))
	if len(envArgs) == 0 {
		return
	}
	args := make([]string, 0, len(os.Args)+len(envArgs))
	args = append(args, os.Args[0])
	args = append(args, envArgs...)
	args = append(args, os.Args[1:]...)
	os.Args = args
}

func runBC(c *cli.Context) error {
	cfg := config.New()
	cfg.SetPosixStrict(c.Bool("posix"))
	if c.Bool("l") {
		cfg.SetScale(20)
	}
	e := env.New()
	m := vm.New(e, cfg, os.Stdout)
	m.Compile = func(src string, e *env.Environment) (int, *bcerr.Error) {
		return parser.CompileSource(cfg, src, e)
	}

	exprs := c.StringSlice("e")
	files := c.Args()
	interactive := c.Bool("i")

	success := true
	ranAny := false

	for _, expr := range exprs {
		ranAny = true
		if !runBCSource(cfg, e, m, "<args>", strings.NewReader(expr+"\n"), false) {
			success = false
		}
	}
	for _, name := range files {
		ranAny = true
		f, err := os.Open(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bc: %s\n", err)
			success = false
			continue
		}
		ok := runBCSource(cfg, e, m, name, f, false)
		f.Close()
		if !ok {
			success = false
		}
	}

	if interactive || !ranAny {
		if !c.Bool("quiet") {
			fmt.Fprintln(os.Stdout, "bc (an arbitrary-precision calculator)")
		}
		if !runBCSource(cfg, e, m, "<stdin>", os.Stdin, true) {
			success = false
		}
	}

	if !success {
		os.Exit(1)
	}
	return nil
}

func runBCSource(cfg *config.Config, e *env.Environment, m *vm.VM, name string, r io.Reader, interactive bool) bool {
	lex := lexer.NewBC(cfg, name, bufio.NewReader(r))
	compile := func(lex *lexer.Lexer, e *env.Environment, fn *bytecode.Function) (bool, *bcerr.Error) {
		p := parser.New(cfg, e, name, lex, fn)
		return p.CompileLine()
	}
	d := repl.New("bc", cfg, e, m, lex, compile, os.Stdout, os.Stderr, "", interactive)
	return d.Run()
}
