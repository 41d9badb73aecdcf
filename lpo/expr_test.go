package lpo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExprMergesTerms(t *testing.T) {
	e := NewExpr().Add(2, 1.5).Add(0, 1).Add(2, 0.5).AddConst(3)

	assert.Equal(t, []Term{{Col: 2, Coef: 2}, {Col: 0, Coef: 1}}, e.Terms)
	assert.Equal(t, 3.0, e.Const)
}

func TestExprDropsCancelledTerms(t *testing.T) {
	e := NewExpr().Add(0, 1).Add(1, 2).Add(2, 3).Add(1, -2)

	assert.Equal(t, []Term{{Col: 0, Coef: 1}, {Col: 2, Coef: 3}}, e.Terms)

	// The position index must follow the removal.
	e.Add(2, 1)
	assert.Equal(t, []Term{{Col: 0, Coef: 1}, {Col: 2, Coef: 4}}, e.Terms)
}

func TestExprIgnoresZeroCoefficients(t *testing.T) {
	e := NewExpr().Add(0, 0)
	assert.Empty(t, e.Terms)
}

func TestExprAddExpr(t *testing.T) {
	a := NewExpr().Add(0, 1).Add(1, 2).AddConst(4)
	b := Var(1).AddConst(1)

	a.AddExpr(b, -2)
	assert.Equal(t, []Term{{Col: 0, Coef: 1}}, a.Terms)
	assert.Equal(t, 2.0, a.Const)

	a.AddExpr(nil, 5)
	assert.Equal(t, 2.0, a.Const)
}

func TestExprLiteralWithoutIndex(t *testing.T) {
	e := &Expr{Terms: []Term{{Col: 3, Coef: 1}}}
	e.Add(3, 1)
	assert.Equal(t, []Term{{Col: 3, Coef: 2}}, e.Terms)
}

func TestConstant(t *testing.T) {
	e := Constant(7)
	assert.Empty(t, e.Terms)
	assert.Equal(t, 7.0, e.Const)
}
