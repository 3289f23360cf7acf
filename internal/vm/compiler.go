package vm

import (
	"github.com/fabiosvm/akwan/internal/diagnostics"
	"github.com/fabiosvm/akwan/internal/lexer"
	"github.com/fabiosvm/akwan/internal/symbols"
	"github.com/fabiosvm/akwan/internal/token"
	"github.com/fabiosvm/akwan/internal/value"
)

// Flags for Compile.
const (
	FlagNone = 0
	// FlagCheckOnly parses and resolves fully but suppresses byte and
	// constant emission, so a failing compile never leaves partial code.
	FlagCheckOnly = 1 << 0
)

// Compiler drives the lexer, resolves names against a scope-aware symbol
// table, and emits into a chunk — in one pass, with no intervening AST.
type Compiler struct {
	flags   int
	lex     *lexer.Lexer
	tok     token.Token
	symbols *symbols.Table
	chunk   *Chunk
}

func (c *Compiler) checkOnly() bool { return c.flags&FlagCheckOnly != 0 }

// NewCompiler builds a compiler over source, primed at the first token.
func NewCompiler(flags int, source string) (*Compiler, error) {
	c := &Compiler{flags: flags, lex: lexer.New(source), symbols: symbols.New(), chunk: NewChunk()}
	if err := c.advance(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Compiler) advance() error {
	tok, err := c.lex.NextToken()
	if err != nil {
		return err
	}
	c.tok = tok
	return nil
}

func (c *Compiler) check(t token.TokenType) bool { return c.tok.Type == t }

func (c *Compiler) match(t token.TokenType) (bool, error) {
	if !c.check(t) {
		return false, nil
	}
	if err := c.advance(); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Compiler) expect(t token.TokenType, what string) (token.Token, error) {
	if !c.check(t) {
		return token.Token{}, c.unexpectedToken(what)
	}
	tok := c.tok
	if err := c.advance(); err != nil {
		return token.Token{}, err
	}
	return tok, nil
}

func (c *Compiler) unexpectedToken(expected string) error {
	if c.tok.Type == token.EOF {
		return diagnostics.Newf(diagnostics.Syntax, c.tok.Line, c.tok.Column,
			"unexpected end of file, expected %s", expected)
	}
	return diagnostics.Newf(diagnostics.Syntax, c.tok.Line, c.tok.Column,
		"unexpected token '%s', expected %s", c.tok.Lexeme, expected)
}

// emitOpcode appends op unless running in check-only mode.
func (c *Compiler) emitOpcode(op Op) int {
	if c.checkOnly() {
		return -1
	}
	return c.chunk.EmitOpcode(op, c.tok.Line)
}

// emitByte appends an immediate byte unless running in check-only mode.
func (c *Compiler) emitByte(b byte) {
	if c.checkOnly() {
		return
	}
	c.chunk.EmitByte(b, c.tok.Line)
}

func (c *Compiler) addConstant(v token.Token, val value.Value) (int, error) {
	if c.checkOnly() {
		return 0, nil
	}
	idx, ok := c.chunk.AddConstant(val)
	if !ok {
		return 0, diagnostics.Newf(diagnostics.Semantic, v.Line, v.Column, "too many constants defined")
	}
	return idx, nil
}

// Compile parses a chunk (statement list until EOF) and emits a trailing
// NIL; RETURN epilogue so every program yields a value. It returns the
// compiled Chunk, or the first error encountered.
func Compile(flags int, source string) (*Chunk, error) {
	c, err := NewCompiler(flags, source)
	if err != nil {
		return nil, err
	}
	for !c.check(token.EOF) {
		if err := c.statement(); err != nil {
			c.chunk.Release()
			return nil, err
		}
	}
	c.emitOpcode(OpNil)
	c.emitOpcode(OpReturn)
	return c.chunk, nil
}

func (c *Compiler) statement() error {
	switch {
	case c.check(token.LET):
		return c.letStatement()
	case c.check(token.INOUT):
		return c.inoutStatement()
	case c.check(token.RETURN):
		return c.returnStatement()
	case c.check(token.LBRACE):
		return c.blockStatement()
	case c.check(token.NAME):
		return c.nameLedStatement()
	default:
		if err := c.expression(); err != nil {
			return err
		}
		if _, err := c.expect(token.SEMI, "';'"); err != nil {
			return err
		}
		c.emitOpcode(OpPop)
		return nil
	}
}

// nameLedStatement disambiguates `NAME = expr ;` (assignment) from a bare
// expression statement starting with a name, by peeking one token ahead.
func (c *Compiler) nameLedStatement() error {
	nameTok := c.tok
	save := *c.lex
	if err := c.advance(); err != nil {
		return err
	}
	if c.check(token.ASSIGN) {
		return c.assignStatement(nameTok)
	}
	*c.lex = save
	c.tok = nameTok
	if err := c.expression(); err != nil {
		return err
	}
	if _, err := c.expect(token.SEMI, "';'"); err != nil {
		return err
	}
	c.emitOpcode(OpPop)
	return nil
}

func (c *Compiler) defineSymbol(name token.Token, isRef bool) error {
	if _, ok := c.symbols.Define(name.Lexeme, isRef); !ok {
		if c.symbols.Count() >= symbols.MaxSymbols {
			return diagnostics.Newf(diagnostics.Semantic, name.Line, name.Column,
				"too many symbols defined")
		}
		return diagnostics.Newf(diagnostics.Semantic, name.Line, name.Column,
			"symbol '%s' already defined", name.Lexeme)
	}
	return nil
}

func (c *Compiler) resolveSymbol(name token.Token) (int, bool, error) {
	sym, ok := c.symbols.Resolve(name.Lexeme)
	if !ok {
		return 0, false, diagnostics.Newf(diagnostics.Semantic, name.Line, name.Column,
			"symbol '%s' referenced but not defined", name.Lexeme)
	}
	return sym.Slot, sym.IsRef, nil
}

func (c *Compiler) letStatement() error {
	if err := c.advance(); err != nil { // 'let'
		return err
	}
	name, err := c.expect(token.NAME, "a name")
	if err != nil {
		return err
	}
	if ok, err := c.match(token.ASSIGN); err != nil {
		return err
	} else if ok {
		if err := c.expression(); err != nil {
			return err
		}
	} else {
		c.emitOpcode(OpNil)
	}
	if _, err := c.expect(token.SEMI, "';'"); err != nil {
		return err
	}
	return c.defineSymbol(name, false)
}

// inoutStatement requires a reference-producing right-hand side (an
// `&name` or `&name[...]` chain); passing a value is a compile-time TYPE
// error.
func (c *Compiler) inoutStatement() error {
	if err := c.advance(); err != nil { // 'inout'
		return err
	}
	name, err := c.expect(token.NAME, "a name")
	if err != nil {
		return err
	}
	if _, err := c.expect(token.ASSIGN, "'='"); err != nil {
		return err
	}
	if !c.check(token.AMPERSAND) {
		return diagnostics.Newf(diagnostics.Type, c.tok.Line, c.tok.Column,
			"inout binding requires a reference expression")
	}
	if err := c.referenceExpr(); err != nil {
		return err
	}
	if _, err := c.expect(token.SEMI, "';'"); err != nil {
		return err
	}
	return c.defineSymbol(name, true)
}

func (c *Compiler) assignStatement(name token.Token) error {
	if _, err := c.expect(token.ASSIGN, "'='"); err != nil {
		return err
	}
	if err := c.expression(); err != nil {
		return err
	}
	if _, err := c.expect(token.SEMI, "';'"); err != nil {
		return err
	}
	slot, isRef, err := c.resolveSymbol(name)
	if err != nil {
		return err
	}
	if isRef {
		c.emitOpcode(OpSetLocalByRef)
	} else {
		c.emitOpcode(OpSetLocal)
	}
	c.emitByte(byte(slot))
	return nil
}

func (c *Compiler) returnStatement() error {
	if err := c.advance(); err != nil { // 'return'
		return err
	}
	if c.check(token.SEMI) {
		if err := c.advance(); err != nil {
			return err
		}
		c.emitOpcode(OpNil)
		c.emitOpcode(OpReturn)
		return nil
	}
	if err := c.expression(); err != nil {
		return err
	}
	if _, err := c.expect(token.SEMI, "';'"); err != nil {
		return err
	}
	c.emitOpcode(OpReturn)
	return nil
}

func (c *Compiler) blockStatement() error {
	if err := c.advance(); err != nil { // '{'
		return err
	}
	c.symbols.PushScope()
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		if err := c.statement(); err != nil {
			return err
		}
	}
	if _, err := c.expect(token.RBRACE, "'}'"); err != nil {
		return err
	}
	for range c.symbols.PopScope() {
		c.emitOpcode(OpPop)
	}
	return nil
}
