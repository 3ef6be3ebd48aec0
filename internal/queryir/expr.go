package queryir

import (
	"maps"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// compileExpr compiles a custom leaf expression. Undefined variables
// evaluate to nil so records missing a field simply fail the test.
func compileExpr(src string) (*vm.Program, error) {
	return expr.Compile(src, expr.AllowUndefinedVariables(), expr.AsBool())
}

// exprPredicate adapts a compiled program to a comparator predicate.
// The property is bound to value; object properties also expose their
// keys as variables. Runtime errors count as false.
func exprPredicate(program *vm.Program) func(any) bool {
	return func(property any) bool {
		env := map[string]any{}
		if obj, ok := property.(map[string]any); ok {
			maps.Copy(env, obj)
		}
		env["value"] = property

		out, err := vm.Run(program, env)
		if err != nil {
			return false
		}
		b, ok := out.(bool)
		return ok && b
	}
}
