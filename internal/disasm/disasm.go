// Package disasm pretty-prints a compiled chunk for debugging: one line
// per instruction plus a constant-pool and byte-size summary.
package disasm

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/fabiosvm/akwan/internal/vm"
)

// Disassemble renders chunk's code and constant pool as human-readable text.
func Disassemble(chunk *vm.Chunk) string {
	var b strings.Builder

	fmt.Fprintf(&b, "; %s code, %s constants\n",
		humanize.Bytes(uint64(len(chunk.Code))),
		humanize.Comma(int64(len(chunk.Constants))))

	ip := 0
	for ip < len(chunk.Code) {
		ip = disassembleInstruction(&b, chunk, ip)
	}

	if len(chunk.Constants) > 0 {
		fmt.Fprintln(&b, "; constants:")
		for i, c := range chunk.Constants {
			fmt.Fprintf(&b, "%4d  %s\n", i, c.Inspect())
		}
	}

	return b.String()
}

func disassembleInstruction(b *strings.Builder, chunk *vm.Chunk, ip int) int {
	op := vm.Op(chunk.Code[ip])
	line := chunk.Lines[ip]

	fmt.Fprintf(b, "%04d  %4d  %-18s", ip, line, op.String())

	if op.HasImmediate() {
		imm := chunk.Code[ip+1]
		fmt.Fprintf(b, " %3d", imm)
		if op == vm.OpConst && int(imm) < len(chunk.Constants) {
			fmt.Fprintf(b, "  ; %s", chunk.Constants[imm].Inspect())
		}
		fmt.Fprintln(b)
		return ip + 2
	}

	fmt.Fprintln(b)
	return ip + 1
}
