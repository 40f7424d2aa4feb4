// Command gracec compiles a Grace source file to LLVM IR.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"

	"grace"
)

type options struct {
	Output      string `short:"o" long:"output" description:"output path (default: stdout)"`
	EmitIR      bool   `short:"S" description:"emit textual LLVM IR (default and only mode)"`
	Triple      string `long:"triple" description:"override the target triple"`
	ConfigPath  string `long:"config" description:"path to a compiler config file" value-name:"PATH"`
	Diagnostics string `long:"diagnostics" description:"path to write a structured diagnostics report on failure" value-name:"PATH"`

	Args struct {
		Source string `positional-arg-name:"source" description:"source path, or - for stdin"`
	} `positional-args:"yes"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if ce, ok := err.(grace.CompileError); ok && opts.Diagnostics != "" {
			if werr := grace.WriteDiagnostics(opts.Diagnostics, ce); werr != nil {
				fmt.Fprintln(os.Stderr, werr)
			}
		}
		os.Exit(1)
	}
}

func run(opts options) error {
	filename, source, err := readSource(opts.Args.Source)
	if err != nil {
		return err
	}

	cfg := grace.DefaultConfig()
	if opts.ConfigPath != "" {
		cfg, err = grace.LoadConfig(opts.ConfigPath)
		if err != nil {
			return err
		}
	}
	if opts.Triple != "" {
		cfg.TargetTriple = opts.Triple
	}

	prog, err := grace.ParseProgram(filename, source)
	if err != nil {
		return err
	}
	_, info, err := grace.Analyze(prog)
	if err != nil {
		return err
	}
	paths := grace.BuildScopePaths(prog)
	mod, err := grace.Codegen(prog, info, paths, cfg)
	if err != nil {
		return err
	}

	out := os.Stdout
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	fmt.Fprintln(out, mod.String())
	return nil
}

func readSource(path string) (string, []byte, error) {
	if path == "" || path == "-" {
		source, err := io.ReadAll(os.Stdin)
		return "<stdin>", source, err
	}
	source, err := os.ReadFile(path)
	return path, source, err
}
