// emberc is the Ember compiler driver: source text in, a binary
// WebAssembly module out.
//
// Usage: emberc [flags] <source-file>
//
// Flags:
//
//	-t          dump the token stream to stdout and exit 0
//	-o path     output path for the .wasm module (default <source>.wasm)
//	-i path     path to the JSON Import/Export Table (required unless -t)
//
// The compiler pipeline:
//
//	source.em → lexer → parser → semantic analyzer → wasmgen → <out>.wasm
//
// Exit codes: 0 success; 1 I/O failure; 2 lexical error; 3 syntactic
// error; 4 semantic error; 5 code-gen error.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gmofishsauce/emberc/internal/diag"
	"github.com/gmofishsauce/emberc/internal/iet"
	"github.com/gmofishsauce/emberc/internal/lexer"
	"github.com/gmofishsauce/emberc/internal/parser"
	"github.com/gmofishsauce/emberc/internal/sema"
	"github.com/gmofishsauce/emberc/internal/token"
	"github.com/gmofishsauce/emberc/internal/wasmgen"
)

// exitError carries the stable exit code a failure class maps to, per
// the exit-code table; main is the only place that calls os.Exit.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func newExitError(code int, format string, args ...interface{}) *exitError {
	return &exitError{code: code, msg: fmt.Sprintf(format, args...)}
}

var kindExitCode = map[diag.Kind]int{
	diag.IO:       1,
	diag.Lexical:  2,
	diag.Syntax:   3,
	diag.Semantic: 4,
	diag.Codegen:  5,
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			fmt.Fprintf(os.Stderr, "emberc: %s\n", ee.msg)
			os.Exit(ee.code)
		}
		fmt.Fprintf(os.Stderr, "emberc: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		dumpTokens bool
		outputPath string
		ietPath    string
	)

	cmd := &cobra.Command{
		Use:           "emberc [flags] <source-file>",
		Short:         "Compile an Ember source file to a WebAssembly module",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], dumpTokens, outputPath, ietPath)
		},
	}

	cmd.Flags().BoolVarP(&dumpTokens, "tokens", "t", false, "dump the token stream to stdout and exit")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output path for the .wasm module (default <source>.wasm)")
	cmd.Flags().StringVarP(&ietPath, "iet", "i", "", "path to the JSON Import/Export Table (required unless -t)")

	return cmd
}

func run(sourcePath string, dumpTokens bool, outputPath, ietPath string) error {
	src, err := os.ReadFile(sourcePath)
	if err != nil {
		return newExitError(1, "cannot read %s: %v", sourcePath, err)
	}

	if dumpTokens {
		return runDumpTokens(sourcePath, src)
	}

	if ietPath == "" {
		return newExitError(1, "-i <path> is required when emitting wasm")
	}
	table, err := iet.LoadFile(ietPath)
	if err != nil {
		return newExitError(1, "cannot load IET %s: %v", ietPath, err)
	}

	sink := diag.New(sourcePath)

	lx := lexer.New(lexer.NewCharStream(bytes.NewReader(src)))
	p := parser.New(lx, sink)
	file := p.Parse()
	if code, ok := firstStageCode(sink, diag.Lexical, diag.Syntax); ok {
		sink.Sort()
		sink.Render(os.Stderr)
		return newExitError(code, "compilation failed")
	}

	sema.New(file, sink).Run()
	if sink.HasKind(diag.Semantic) {
		sink.Sort()
		sink.Render(os.Stderr)
		return newExitError(kindExitCode[diag.Semantic], "compilation failed")
	}

	module := wasmgen.Generate(file, table, sink)
	if sink.HasKind(diag.Codegen) {
		sink.Sort()
		sink.Render(os.Stderr)
		return newExitError(kindExitCode[diag.Codegen], "compilation failed")
	}

	out := outputPath
	if out == "" {
		out = defaultOutputPath(sourcePath)
	}
	if err := os.WriteFile(out, module.Encode(), 0644); err != nil {
		return newExitError(1, "cannot write %s: %v", out, err)
	}
	return nil
}

// firstStageCode reports the exit code for the first of kinds (in the
// order given) present in sink, so a source file with both lexical and
// syntactic errors is reported under the earlier stage's code.
func firstStageCode(sink *diag.Sink, kinds ...diag.Kind) (int, bool) {
	for _, k := range kinds {
		if sink.HasKind(k) {
			return kindExitCode[k], true
		}
	}
	return 0, false
}

func defaultOutputPath(sourcePath string) string {
	base := sourcePath
	if i := strings.LastIndex(base, "."); i >= 0 {
		base = base[:i]
	}
	return base + ".wasm"
}

// runDumpTokens lexes src to completion and writes one line per token to
// stdout, regardless of lexical errors — dumping never aborts, since the
// lexer always produces a (possibly Error-tagged) token stream.
func runDumpTokens(sourcePath string, src []byte) error {
	lx := lexer.New(lexer.NewCharStream(bytes.NewReader(src)))
	for {
		tok := lx.Next()
		printToken(tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return nil
}

func printToken(tok token.Token) {
	pos := tok.Pos
	switch {
	case tok.Kind == token.ERROR:
		fmt.Printf("%d %d %d %d %s %s\n", pos.StartLine, pos.StartColumn, pos.EndLine, pos.EndColumn, tok.Kind, tok.ErrText)
	case tok.Kind == token.IDENT || tok.Kind == token.LITERAL:
		fmt.Printf("%d %d %d %d %s %s\n", pos.StartLine, pos.StartColumn, pos.EndLine, pos.EndColumn, tok.Kind, tok.Text)
	default:
		fmt.Printf("%d %d %d %d %s\n", pos.StartLine, pos.StartColumn, pos.EndLine, pos.EndColumn, tok.Kind)
	}
}
