package compiler

import "nilan/token"

// Precedence levels, lowest to highest, per spec.md §4.2.
type Precedence byte

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecTernary
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
)

type prefixFn func(c *Compiler, canAssign bool)
type infixFn func(c *Compiler, canAssign bool)

// parseRule is the {prefix-handler, infix-handler, precedence} triple a
// token type maps to in the Pratt table.
type parseRule struct {
	prefix     prefixFn
	infix      infixFn
	precedence Precedence
}

func (c *Compiler) rule(tt token.TokenType) parseRule {
	if r, ok := c.rules[tt]; ok {
		return r
	}
	return parseRule{precedence: PrecNone}
}

func (c *Compiler) buildRules() map[token.TokenType]parseRule {
	return map[token.TokenType]parseRule{
		token.LPA:           {prefix: (*Compiler).grouping, infix: (*Compiler).call, precedence: PrecCall},
		token.DOT:           {infix: (*Compiler).dot, precedence: PrecCall},
		token.SUB:           {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: PrecTerm},
		token.ADD:           {infix: (*Compiler).binary, precedence: PrecTerm},
		token.DIV:           {infix: (*Compiler).binary, precedence: PrecFactor},
		token.MULT:          {infix: (*Compiler).binary, precedence: PrecFactor},
		token.BANG:          {prefix: (*Compiler).unary},
		token.NOT_EQUAL:     {infix: (*Compiler).binary, precedence: PrecEquality},
		token.EQUAL_EQUAL:   {infix: (*Compiler).binary, precedence: PrecEquality},
		token.LESS:          {infix: (*Compiler).binary, precedence: PrecComparison},
		token.LESS_EQUAL:    {infix: (*Compiler).binary, precedence: PrecComparison},
		token.LARGER:        {infix: (*Compiler).binary, precedence: PrecComparison},
		token.LARGER_EQUAL:  {infix: (*Compiler).binary, precedence: PrecComparison},
		token.INSTANCEOF:    {infix: (*Compiler).instanceofExpr, precedence: PrecComparison},
		token.IDENTIFIER:    {prefix: (*Compiler).variable},
		token.STRING:        {prefix: (*Compiler).string},
		token.NUMBER:        {prefix: (*Compiler).number},
		token.AND:           {infix: (*Compiler).and_, precedence: PrecAnd},
		token.OR:            {infix: (*Compiler).or_, precedence: PrecOr},
		token.FALSE:         {prefix: (*Compiler).literal},
		token.TRUE:          {prefix: (*Compiler).literal},
		token.NIL:           {prefix: (*Compiler).literal},
		token.THIS:          {prefix: (*Compiler).this_},
		token.SUPER:         {prefix: (*Compiler).super_},
		token.QUESTION:      {infix: (*Compiler).ternary, precedence: PrecTernary},
		token.INCREMENT:     {prefix: (*Compiler).prefixIncDec},
		token.DECREMENT:     {prefix: (*Compiler).prefixIncDec},
	}
}
