package vm

import (
	"github.com/fabiosvm/akwan/internal/diagnostics"
	"github.com/fabiosvm/akwan/internal/token"
	"github.com/fabiosvm/akwan/internal/value"
)

// expr := add ('..' add)?
func (c *Compiler) expression() error {
	if err := c.addExpr(); err != nil {
		return err
	}
	if ok, err := c.match(token.RANGE); err != nil {
		return err
	} else if ok {
		if err := c.addExpr(); err != nil {
			return err
		}
		c.emitOpcode(OpRange)
	}
	return nil
}

// add := mul (('+'|'-') mul)*
func (c *Compiler) addExpr() error {
	if err := c.mulExpr(); err != nil {
		return err
	}
	for c.check(token.PLUS) || c.check(token.MINUS) {
		op := c.tok.Type
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.mulExpr(); err != nil {
			return err
		}
		if op == token.PLUS {
			c.emitOpcode(OpAdd)
		} else {
			c.emitOpcode(OpSub)
		}
	}
	return nil
}

// mul := unary (('*'|'/'|'%') unary)*
func (c *Compiler) mulExpr() error {
	if err := c.unaryExpr(); err != nil {
		return err
	}
	for c.check(token.STAR) || c.check(token.SLASH) || c.check(token.PERCENT) {
		op := c.tok.Type
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.unaryExpr(); err != nil {
			return err
		}
		switch op {
		case token.STAR:
			c.emitOpcode(OpMul)
		case token.SLASH:
			c.emitOpcode(OpDiv)
		default:
			c.emitOpcode(OpMod)
		}
	}
	return nil
}

// unary := '-' unary | primary
func (c *Compiler) unaryExpr() error {
	if ok, err := c.match(token.MINUS); err != nil {
		return err
	} else if ok {
		if err := c.unaryExpr(); err != nil {
			return err
		}
		c.emitOpcode(OpNeg)
		return nil
	}
	return c.primaryExpr()
}

// primary := 'nil' | 'false' | 'true'
//          | INT | NUMBER | STRING
//          | '[' (expr (',' expr)*)? ']'
//          | '&' NAME ('[' expr ']')*
//          | NAME ('[' expr ']')*
//          | '(' expr ')'
func (c *Compiler) primaryExpr() error {
	switch {
	case c.check(token.NIL):
		return c.advanceAndEmit(OpNil)
	case c.check(token.FALSE):
		return c.advanceAndEmit(OpFalse)
	case c.check(token.TRUE):
		return c.advanceAndEmit(OpTrue)
	case c.check(token.INT):
		return c.intLiteral()
	case c.check(token.NUMBER):
		return c.numberLiteral()
	case c.check(token.STRING):
		return c.stringLiteral()
	case c.check(token.LBRACKET):
		return c.arrayLiteral()
	case c.check(token.AMPERSAND):
		return c.referenceExpr()
	case c.check(token.NAME):
		return c.symbolExpr()
	case c.check(token.LPAREN):
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.expression(); err != nil {
			return err
		}
		_, err := c.expect(token.RPAREN, "')'")
		return err
	default:
		return c.unexpectedToken("an expression")
	}
}

func (c *Compiler) advanceAndEmit(op Op) error {
	if err := c.advance(); err != nil {
		return err
	}
	c.emitOpcode(op)
	return nil
}

// intLiteral emits INT <byte> for literals up to 255, otherwise promotes
// to a number constant and emits CONST <index>.
func (c *Compiler) intLiteral() error {
	tok := c.tok
	n := tok.Literal.(int64)
	if err := c.advance(); err != nil {
		return err
	}
	if n >= 0 && n <= 255 {
		c.emitOpcode(OpInt)
		c.emitByte(byte(n))
		return nil
	}
	idx, err := c.addConstant(tok, value.Number(float64(n)))
	if err != nil {
		return err
	}
	c.emitOpcode(OpConst)
	c.emitByte(byte(idx))
	return nil
}

func (c *Compiler) numberLiteral() error {
	tok := c.tok
	n := tok.Literal.(float64)
	if err := c.advance(); err != nil {
		return err
	}
	idx, err := c.addConstant(tok, value.Number(n))
	if err != nil {
		return err
	}
	c.emitOpcode(OpConst)
	c.emitByte(byte(idx))
	return nil
}

func (c *Compiler) stringLiteral() error {
	tok := c.tok
	s := tok.Literal.(string)
	if err := c.advance(); err != nil {
		return err
	}
	var v value.Value
	if !c.checkOnly() {
		v = value.FromObject(value.NewString(s))
	}
	idx, err := c.addConstant(tok, v)
	if err != nil {
		return err
	}
	if !c.checkOnly() {
		value.Release(v) // AddConstant retained its own reference
	}
	c.emitOpcode(OpConst)
	c.emitByte(byte(idx))
	return nil
}

// arrayLiteral emits element expressions left-to-right, then ARRAY n.
func (c *Compiler) arrayLiteral() error {
	open := c.tok
	if err := c.advance(); err != nil { // '['
		return err
	}
	n := 0
	if !c.check(token.RBRACKET) {
		for {
			if err := c.expression(); err != nil {
				return err
			}
			n++
			if ok, err := c.match(token.COMMA); err != nil {
				return err
			} else if !ok {
				break
			}
		}
	}
	if _, err := c.expect(token.RBRACKET, "']'"); err != nil {
		return err
	}
	if n > 255 {
		return diagnostics.Newf(diagnostics.Semantic, open.Line, open.Column,
			"array literal has too many elements")
	}
	c.emitOpcode(OpArray)
	c.emitByte(byte(n))
	return nil
}

// symbolExpr compiles `NAME ('[' expr ']')*`, a plain value read optionally
// followed by element indexing.
func (c *Compiler) symbolExpr() error {
	name, err := c.expect(token.NAME, "a name")
	if err != nil {
		return err
	}
	slot, isRef, err := c.resolveSymbol(name)
	if err != nil {
		return err
	}
	if isRef {
		c.emitOpcode(OpGetLocalByRef)
	} else {
		c.emitOpcode(OpGetLocal)
	}
	c.emitByte(byte(slot))
	for c.check(token.LBRACKET) {
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.expression(); err != nil {
			return err
		}
		if _, err := c.expect(token.RBRACKET, "']'"); err != nil {
			return err
		}
		c.emitOpcode(OpGetElement)
	}
	return nil
}

// referenceExpr compiles `'&' NAME ('[' expr ']')*`. With no trailing
// index it emits LOCAL_REF index. With trailing indexing it emits
// GET_LOCAL then one GET_ELEMENT per bracket pair except the last, which
// becomes ELEMENT_REF.
func (c *Compiler) referenceExpr() error {
	if _, err := c.expect(token.AMPERSAND, "'&'"); err != nil {
		return err
	}
	name, err := c.expect(token.NAME, "a name")
	if err != nil {
		return err
	}
	slot, isRef, err := c.resolveSymbol(name)
	if err != nil {
		return err
	}
	if !c.check(token.LBRACKET) {
		c.emitOpcode(OpLocalRef)
		c.emitByte(byte(slot))
		return nil
	}
	if isRef {
		c.emitOpcode(OpGetLocalByRef)
	} else {
		c.emitOpcode(OpGetLocal)
	}
	c.emitByte(byte(slot))
	for c.check(token.LBRACKET) {
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.expression(); err != nil {
			return err
		}
		if _, err := c.expect(token.RBRACKET, "']'"); err != nil {
			return err
		}
		if c.check(token.LBRACKET) {
			c.emitOpcode(OpGetElement)
		} else {
			c.emitOpcode(OpElementRef)
		}
	}
	return nil
}
