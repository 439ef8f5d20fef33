package xlpaste

import (
	"math"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
)

type formulaFunc func(args ...any) (any, error)

// formulaFunctions lists every worksheet function the engine understands.
// Names are matched case-insensitively.
var formulaFunctions = map[string]formulaFunc{
	"SUM":     fnSum,
	"AVERAGE": fnAverage,
	"MIN":     fnMin,
	"MAX":     fnMax,
	"COUNT":   fnCount,
	"ABS":     fnAbs,
	"ROUND":   fnRound,
	"IF":      fnIf,
	"AND":     fnAnd,
	"OR":      fnOr,
	"NOT":     fnNot,
	"ISEVEN":  fnIsEven,
	"ISODD":   fnIsOdd,
	"ERROR":   fnError,
}

func functionOptions() []expr.Option {
	opts := make([]expr.Option, 0, len(formulaFunctions))
	for name, fn := range formulaFunctions {
		opts = append(opts, expr.Function(name, fn))
	}
	return opts
}

// numbers collects the numeric arguments of an aggregate. Inside ranges only numbers
// count; a direct argument must convert to a number.
func numbers(args []any) ([]float64, error) {
	var out []float64
	for _, arg := range args {
		if area, ok := arg.([]any); ok {
			for _, v := range area {
				if f, ok := toFloat(v); ok {
					out = append(out, f)
				}
			}
			continue
		}
		f, err := scalarNumber(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// scalarNumber converts a single argument the way arithmetic does.
func scalarNumber(v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, errValue(ErrCodeValue)
		}
		return f, nil
	case ErrorValue:
		return 0, &formulaError{code: x}
	case []any:
		return 0, errValue(ErrCodeValue)
	}
	if f, ok := toFloat(v); ok {
		return f, nil
	}
	return 0, errValue(ErrCodeValue)
}

func scalarBool(v any) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	if s, ok := v.(string); ok {
		switch strings.ToUpper(s) {
		case "TRUE":
			return true, nil
		case "FALSE":
			return false, nil
		}
		return false, errValue(ErrCodeValue)
	}
	f, err := scalarNumber(v)
	if err != nil {
		return false, err
	}
	return f != 0, nil
}

func fnSum(args ...any) (any, error) {
	ns, err := numbers(args)
	if err != nil {
		return nil, err
	}
	total := 0.0
	for _, n := range ns {
		total += n
	}
	return total, nil
}

func fnAverage(args ...any) (any, error) {
	ns, err := numbers(args)
	if err != nil {
		return nil, err
	}
	if len(ns) == 0 {
		return nil, errValue(ErrCodeDiv0)
	}
	total := 0.0
	for _, n := range ns {
		total += n
	}
	return total / float64(len(ns)), nil
}

func fnMin(args ...any) (any, error) {
	ns, err := numbers(args)
	if err != nil || len(ns) == 0 {
		return 0.0, err
	}
	m := ns[0]
	for _, n := range ns[1:] {
		m = math.Min(m, n)
	}
	return m, nil
}

func fnMax(args ...any) (any, error) {
	ns, err := numbers(args)
	if err != nil || len(ns) == 0 {
		return 0.0, err
	}
	m := ns[0]
	for _, n := range ns[1:] {
		m = math.Max(m, n)
	}
	return m, nil
}

// fnCount counts numbers only; text and blanks are ignored rather than rejected.
func fnCount(args ...any) (any, error) {
	count := 0
	for _, arg := range args {
		if area, ok := arg.([]any); ok {
			for _, v := range area {
				if _, ok := toFloat(v); ok {
					count++
				}
			}
			continue
		}
		if _, ok := toFloat(arg); ok {
			count++
		}
	}
	return float64(count), nil
}

func fnAbs(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, errValue(ErrCodeValue)
	}
	f, err := scalarNumber(args[0])
	if err != nil {
		return nil, err
	}
	return math.Abs(f), nil
}

// fnRound rounds half away from zero.
func fnRound(args ...any) (any, error) {
	if len(args) != 2 {
		return nil, errValue(ErrCodeValue)
	}
	f, err := scalarNumber(args[0])
	if err != nil {
		return nil, err
	}
	digits, err := scalarNumber(args[1])
	if err != nil {
		return nil, err
	}
	p := math.Pow(10, math.Trunc(digits))
	return math.Round(f*p) / p, nil
}

func fnIf(args ...any) (any, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, errValue(ErrCodeValue)
	}
	cond, err := scalarBool(args[0])
	if err != nil {
		return nil, err
	}
	if cond {
		return args[1], nil
	}
	if len(args) == 3 {
		return args[2], nil
	}
	return false, nil
}

func fnAnd(args ...any) (any, error) {
	return logical(args, true)
}

func fnOr(args ...any) (any, error) {
	return logical(args, false)
}

// logical folds AND (all true) or OR (any true) over scalars and ranges.
// Blanks and text inside ranges are skipped.
func logical(args []any, all bool) (any, error) {
	seen := false
	result := all
	visit := func(v any) error {
		b, err := scalarBool(v)
		if err != nil {
			return err
		}
		seen = true
		if all {
			result = result && b
		} else {
			result = result || b
		}
		return nil
	}
	for _, arg := range args {
		if area, ok := arg.([]any); ok {
			for _, v := range area {
				switch v.(type) {
				case nil, string:
					continue
				}
				if err := visit(v); err != nil {
					return nil, err
				}
			}
			continue
		}
		if err := visit(arg); err != nil {
			return nil, err
		}
	}
	if !seen {
		return nil, errValue(ErrCodeValue)
	}
	return result, nil
}

func fnNot(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, errValue(ErrCodeValue)
	}
	b, err := scalarBool(args[0])
	if err != nil {
		return nil, err
	}
	return !b, nil
}

func fnIsEven(args ...any) (any, error) {
	return parity(args, 0)
}

func fnIsOdd(args ...any) (any, error) {
	return parity(args, 1)
}

func parity(args []any, want int64) (any, error) {
	if len(args) != 1 {
		return nil, errValue(ErrCodeValue)
	}
	f, err := scalarNumber(args[0])
	if err != nil {
		return nil, err
	}
	n := int64(math.Trunc(f))
	if n < 0 {
		n = -n
	}
	return n%2 == want, nil
}

// fnError raises an error literal written in the formula, such as #N/A.
func fnError(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, errValue(ErrCodeValue)
	}
	code, _ := args[0].(string)
	return nil, errValue(code)
}
