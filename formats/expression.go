package formats

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/reoring/jsonskema/value"
)

// exprEnv binds the checked value to "value". The field is untyped so that
// type errors surface at run time and reject the value.
type exprEnv struct {
	Value any `expr:"value"`
}

// exprOptions are available in every Expression format.
func exprOptions() []expr.Option {
	return []expr.Option{
		expr.Env(exprEnv{}),
		expr.AsBool(),
		expr.Function("num", func(params ...any) (any, error) {
			f, ok := value.ToFloat(params[0])
			if !ok {
				return nil, fmt.Errorf("num: %T is not a number", params[0])
			}
			return f, nil
		}),
		expr.Function("isInteger", func(params ...any) (any, error) {
			return value.IsInteger(params[0]), nil
		}),
	}
}

// Expression returns a Format for primitive whose check is the boolean
// expression src, for example `len(value) % 2 == 0` for even-length strings
// or `num(value) > 0` for positive numbers. An expression that fails at run
// time rejects the value.
func Expression(name, primitive, src string) (Format, error) {
	prg, err := expr.Compile(src, exprOptions()...)
	if err != nil {
		return nil, fmt.Errorf("formats: %s: compile expression: %w", name, err)
	}
	return New(name, func(v any) bool { return run(prg, v) }, primitive), nil
}

func run(prg *vm.Program, v any) bool {
	out, err := expr.Run(prg, exprEnv{Value: v})
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}
