// Package symbols implements the compiler's scope-aware, array-backed
// symbol table: a stack of {name, depth, isRef, slot} records searched
// top-down, matching the compiler's single-pass resolution scheme.
package symbols

// MaxSymbols is the largest number of live symbols a single compile may
// define; the slot index is a single byte so this is a hard ceiling.
const MaxSymbols = 256

// Symbol is a compile-time record for a let/inout binding.
type Symbol struct {
	Name  string
	Depth int
	IsRef bool
	Slot  int
}

// Table is a stack of symbols, push-per-declaration and pop-per-scope-exit.
type Table struct {
	symbols []Symbol
	depth   int
}

// New returns an empty table at scope depth 0.
func New() *Table {
	return &Table{}
}

// Depth returns the current scope depth.
func (t *Table) Depth() int { return t.depth }

// PushScope enters a new block scope.
func (t *Table) PushScope() { t.depth++ }

// PopScope leaves the current block scope and returns the symbols that go
// out of scope, in declaration order, so the caller can emit one POP per
// entry before they're removed from the table.
func (t *Table) PopScope() []Symbol {
	n := len(t.symbols)
	i := n
	for i > 0 && t.symbols[i-1].Depth == t.depth {
		i--
	}
	popped := append([]Symbol(nil), t.symbols[i:]...)
	t.symbols = t.symbols[:i]
	t.depth--
	return popped
}

// Define adds a new symbol at the current scope depth. It reports false if
// name is already defined in the current scope (a SEMANTIC error at the
// call site) or the table is full.
func (t *Table) Define(name string, isRef bool) (Symbol, bool) {
	for i := len(t.symbols) - 1; i >= 0; i-- {
		s := t.symbols[i]
		if s.Depth < t.depth {
			break
		}
		if s.Name == name {
			return Symbol{}, false
		}
	}
	if len(t.symbols) >= MaxSymbols {
		return Symbol{}, false
	}
	sym := Symbol{Name: name, Depth: t.depth, IsRef: isRef, Slot: len(t.symbols)}
	t.symbols = append(t.symbols, sym)
	return sym, true
}

// Resolve looks up name, scanning from the most recently declared symbol
// backward so shadowing works. It returns false if no symbol is visible.
func (t *Table) Resolve(name string) (Symbol, bool) {
	for i := len(t.symbols) - 1; i >= 0; i-- {
		if t.symbols[i].Name == name {
			return t.symbols[i], true
		}
	}
	return Symbol{}, false
}

// Count returns the number of currently-live symbols.
func (t *Table) Count() int { return len(t.symbols) }
