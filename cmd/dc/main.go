// Command dc is an arbitrary-precision calculator implementing the DC
// reverse-Polish command language. It shares internal/repl and
// internal/vm with cmd/bc — only the lexer and compiler it wires in
// differ — and follows the same cli.App shape as cmd/bc/main.go.
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
	"github.com/blinksh/bc/internal/dcparser"
	"github.com/blinksh/bc/internal/env"
	"github.com/blinksh/bc/internal/lexer"
	"github.com/blinksh/bc/internal/repl"
	"github.com/blinksh/bc/internal/vm"
)

func main() {
	app := cli.NewApp()
	app.Name = "dc"
	app.Usage = "an arbitrary-precision reverse-Polish calculator"
	app.ArgsUsage = "[file ...]"
	app.Flags = []cli.Flag{
		cli.StringSliceFlag{Name: "e", Usage: "execute inline `EXPR`"},
		cli.BoolFlag{Name: "q, quiet", Usage: "suppress the startup banner"},
	}
	app.Action = runDC

	prependEnvArgs()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "dc: %s\n", err)
		os.Exit(2)
	}
}

// prependEnvArgs splices DC_ENV_ARGS into os.Args ahead of whatever the
// user typed, mirroring bc's BC_ENV_ARGS handling (spec §6).
func prependEnvArgs() {
	envArgs := strings.Fields(os.Getenv("DC_ENV_ARGS"))
	if len(envArgs) == 0 {
		return
	}
	args := make([]string, 0, len(os.Args)+len(envArgs))
	args = append(args, os.Args[0])
	args = append(args, envArgs...)
	args = append(args, os.Args[1:]...)
	os.Args = args
}

func runDC(c *cli.Context) error {
	cfg := config.New()
	e := env.New()
	m := vm.New(e, cfg, os.Stdout)
	m.Compile = func(src string, e *env.Environment) (int, *bcerr.Error) {
		return dcparser.CompileSource(cfg, src, e)
	}

	exprs := c.StringSlice("e")
	files := c.Args()

	success := true
	ranAny := false

	for _, expr := range exprs {
		ranAny = true
		if !runDCSource(cfg, e, m, strings.NewReader(expr+"\n"), false) {
			success = false
		}
	}
	for _, name := range files {
		ranAny = true
		f, err := os.Open(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "dc: %s\n", err)
			success = false
			continue
		}
		ok := runDCSource(cfg, e, m, f, false)
		f.Close()
		if !ok {
			success = false
		}
	}

	if !ranAny {
		if !c.Bool("quiet") {
			fmt.Fprintln(os.Stdout, "dc (an arbitrary-precision calculator)")
		}
		if !runDCSource(cfg, e, m, os.Stdin, true) {
			success = false
		}
	}

	if !success {
		os.Exit(1)
	}
	return nil
}

func runDCSource(cfg *config.Config, e *env.Environment, m *vm.VM, r io.Reader, interactive bool) bool {
	lex := lexer.NewDC(cfg, "", bufio.NewReader(r))
	p := dcparser.New(cfg, e)
	compile := func(lex *lexer.Lexer, e *env.Environment, fn *bytecode.Function) (bool, *bcerr.Error) {
		return p.CompileLine(lex, fn)
	}
	d := repl.New("dc", cfg, e, m, lex, compile, os.Stdout, os.Stderr, "", interactive)
	return d.Run()
}
