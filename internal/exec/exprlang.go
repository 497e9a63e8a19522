package exec

import (
	"github.com/expr-lang/expr"
)

// ExprLangEvaluator backs the ECMAScript-like datamodel (§3.1) with
// github.com/expr-lang/expr, the closest ecosystem equivalent to a
// JavaScript-style expression language available to this module — the
// core stays oblivious to its syntax, only ever calling Eval (§9).
type ExprLangEvaluator struct{}

// NewExprLangEvaluator constructs the default expression capability.
func NewExprLangEvaluator() *ExprLangEvaluator {
	return &ExprLangEvaluator{}
}

// Eval compiles and runs code against env fresh each call. Chart
// expressions are short and typically run once per microstep, so this
// favors simplicity over caching a compiled *vm.Program per
// expression string.
func (*ExprLangEvaluator) Eval(code string, env map[string]any) (any, error) {
	return expr.Eval(code, env)
}

// NullEvaluator backs the "null" datamodel variant (§3.1): every
// expression is rejected, matching a chart that declared it wants no
// expression evaluation at all.
type NullEvaluator struct{}

func (*NullEvaluator) Eval(code string, env map[string]any) (any, error) {
	return nil, errNullDatamodel
}

var errNullDatamodel = nullDatamodelError{}

type nullDatamodelError struct{}

func (nullDatamodelError) Error() string {
	return "expression evaluation is disabled by the null datamodel"
}
