// Command akwan reads a program from a file argument or stdin, compiles
// and runs it, and prints its result.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/fabiosvm/akwan/internal/diagnostics"
	"github.com/fabiosvm/akwan/internal/disasm"
	"github.com/fabiosvm/akwan/internal/vm"
)

func main() {
	source, err := readSource(os.Args)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	chunk, err := vm.Compile(vm.FlagNone, source)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer chunk.Release()

	if os.Getenv("AKWAN_DUMP") == "1" {
		fmt.Fprint(os.Stderr, disasm.Disassemble(chunk))
	}

	machine := vm.New(vm.DefaultStackSize)
	result, err := machine.Run(chunk)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	fmt.Println(result.Print())
}

func readSource(args []string) (string, error) {
	if len(args) >= 2 {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	if isatty.IsTerminal(os.Stdin.Fd()) {
		return "", fmt.Errorf("usage: %s <file> or pipe a program on stdin", args[0])
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func printError(err error) {
	prefix := "ERROR: "
	if isatty.IsTerminal(os.Stderr.Fd()) {
		prefix = "\x1b[31mERROR:\x1b[0m "
	}
	if de, ok := diagnostics.As(err); ok {
		fmt.Fprintf(os.Stderr, "%s%s\n", prefix, de.Error())
		return
	}
	fmt.Fprintf(os.Stderr, "%s%s\n", prefix, err.Error())
}
