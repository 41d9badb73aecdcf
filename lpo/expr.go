package lpo

// Term is a single coefficient applied to a column.
type Term struct {
	Col  int
	Coef float64
}

// Expr is a linear expression: a sum of terms plus a constant. Terms on the
// same column are merged, and terms are kept in order of first appearance so
// that building the same expression twice gives the same term list.
type Expr struct {
	Terms []Term
	Const float64

	pos map[int]int
}

// NewExpr returns an empty expression.
func NewExpr() *Expr {
	return &Expr{pos: make(map[int]int)}
}

// Add adds coef * column col and returns the expression.
func (e *Expr) Add(col int, coef float64) *Expr {
	if coef == 0 {
		return e
	}
	if e.pos == nil {
		e.pos = make(map[int]int)
		for i, t := range e.Terms {
			e.pos[t.Col] = i
		}
	}
	if i, ok := e.pos[col]; ok {
		e.Terms[i].Coef += coef
		if e.Terms[i].Coef == 0 {
			e.remove(i)
		}
		return e
	}
	e.pos[col] = len(e.Terms)
	e.Terms = append(e.Terms, Term{Col: col, Coef: coef})
	return e
}

// AddConst adds a constant and returns the expression.
func (e *Expr) AddConst(c float64) *Expr {
	e.Const += c
	return e
}

// AddExpr adds scale * other and returns the expression. A nil other is a no-op.
func (e *Expr) AddExpr(other *Expr, scale float64) *Expr {
	if other == nil || scale == 0 {
		return e
	}
	for _, t := range other.Terms {
		e.Add(t.Col, scale*t.Coef)
	}
	e.Const += scale * other.Const
	return e
}

// Constant returns an expression holding only c.
func Constant(c float64) *Expr {
	return NewExpr().AddConst(c)
}

// Var returns an expression holding only the column col with coefficient 1.
func Var(col int) *Expr {
	return NewExpr().Add(col, 1)
}

func (e *Expr) remove(i int) {
	delete(e.pos, e.Terms[i].Col)
	e.Terms = append(e.Terms[:i], e.Terms[i+1:]...)
	for j := i; j < len(e.Terms); j++ {
		e.pos[e.Terms[j].Col] = j
	}
}
