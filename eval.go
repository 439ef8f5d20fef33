package xlpaste

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/xuri/efp"
)

// Recalculator refreshes the cached results of formula cells. A paste calls it once,
// after all of its writes, with the range it wrote.
type Recalculator interface {
	Recalculate(b *Book, changed Range) error
}

// FormulaEngine is the default Recalculator. Each formula is tokenized with efp,
// translated into an expr-lang program and compiled once; references become
// variables filled from the sheet on every run.
//
// The engine recalculates every formula of the workbook; changed is only a hint.
type FormulaEngine struct {
	cache sync.Map // formula text → *compiledFormula
}

// NewFormulaEngine creates a formula engine with an empty program cache.
func NewFormulaEngine() *FormulaEngine {
	return &FormulaEngine{}
}

// compiledFormula is a translated formula ready to run.
type compiledFormula struct {
	program *vm.Program
	cells   []string // single-cell references, bound to c0, c1, ...
	areas   []string // multi-cell references, bound to a0, a1, ...
	failure ErrorValue
}

// formulaError carries an error code out of an expr function call.
type formulaError struct {
	code ErrorValue
}

func (e *formulaError) Error() string { return string(e.code) }

func errValue(code string) error { return &formulaError{code: ErrorValue(code)} }

// Recalculate evaluates every formula in b and stores the results as cached values.
// Per-cell failures become error values; the returned error is always nil for the
// default engine.
func (e *FormulaEngine) Recalculate(b *Book, changed Range) error {
	sheets := b.Sheets()
	for _, s := range sheets {
		s.mu.Lock()
	}
	defer func() {
		for i := len(sheets) - 1; i >= 0; i-- {
			sheets[i].mu.Unlock()
		}
	}()

	r := &recalc{
		engine: e,
		book:   b,
		state:  make(map[cellKey]evalState),
		values: make(map[cellKey]any),
	}
	count := 0
	for _, s := range sheets {
		for _, rc := range s.formulaCells() {
			r.eval(s, rc[0], rc[1])
			count++
		}
	}
	b.opts.logger.Debug("recalculated", "formulas", count, "changed", changed)
	return nil
}

func (e *FormulaEngine) compile(formula string) *compiledFormula {
	if cached, ok := e.cache.Load(formula); ok {
		return cached.(*compiledFormula)
	}
	cf := translate(formula)
	e.cache.Store(formula, cf)
	return cf
}

type evalState int

const (
	stateVisiting evalState = iota + 1
	stateDone
)

type cellKey struct {
	sheet    *Sheet
	row, col int
}

// recalc is one recalculation pass. All sheets are locked for its duration.
type recalc struct {
	engine *FormulaEngine
	book   *Book
	state  map[cellKey]evalState
	values map[cellKey]any
}

// eval returns the value of a cell, evaluating formulas on demand. A cell reached
// again while it is being evaluated is part of a cycle and reads as #REF!.
func (r *recalc) eval(s *Sheet, row, col int) any {
	key := cellKey{s, row, col}
	switch r.state[key] {
	case stateDone:
		return r.values[key]
	case stateVisiting:
		return ErrorValue(ErrCodeRef)
	}

	c := s.cell(row, col)
	if !c.IsFormula() {
		return plainValue(c)
	}

	r.state[key] = stateVisiting
	v := r.run(s, c.Formula)
	r.state[key] = stateDone
	r.values[key] = v
	s.setCached(row, col, v)
	return v
}

func plainValue(c CellContent) any {
	switch c.Type {
	case CellBlank:
		return nil
	case CellError:
		code, _ := c.Value.(string)
		return ErrorValue(code)
	case CellNumber:
		f, _ := toFloat(c.Value)
		return f
	}
	return c.Value
}

// run evaluates formula as if it were written on sheet s.
func (r *recalc) run(s *Sheet, formula string) any {
	cf := r.engine.compile(formula)
	if cf.failure != "" {
		return cf.failure
	}

	env := make(map[string]any, len(cf.cells)+len(cf.areas))
	for i, ref := range cf.cells {
		sheet, area, ok := r.resolve(s, ref)
		if !ok {
			return ErrorValue(ErrCodeRef)
		}
		v := r.eval(sheet, area.Top, area.Left)
		if ev, isErr := v.(ErrorValue); isErr {
			return ev
		}
		if v == nil {
			v = 0.0
		}
		env["c"+strconv.Itoa(i)] = v
	}
	for i, ref := range cf.areas {
		sheet, area, ok := r.resolve(s, ref)
		if !ok {
			return ErrorValue(ErrCodeRef)
		}
		values := make([]any, 0, area.Rows()*area.Cols())
		for row := area.Top; row <= area.Bottom; row++ {
			for col := area.Left; col <= area.Right; col++ {
				v := r.eval(sheet, row, col)
				if ev, isErr := v.(ErrorValue); isErr {
					return ev
				}
				values = append(values, v)
			}
		}
		env["a"+strconv.Itoa(i)] = values
	}

	out, err := expr.Run(cf.program, env)
	if err != nil {
		return errorValueOf(err)
	}
	return normalizeResult(out)
}

// resolve locates a reference relative to the sheet holding the formula. Whole
// rows and columns are clipped to the used part of their sheet.
func (r *recalc) resolve(s *Sheet, ref string) (*Sheet, Rect, bool) {
	sheetName, body := splitSheet(strings.ReplaceAll(ref, "$", ""))
	sheet := s
	if sheetName != "" {
		if sheet = r.book.Sheet(sheetName); sheet == nil {
			return nil, Rect{}, false
		}
	}

	parts := strings.Split(body, ":")
	if len(parts) == 2 && !cellPartRegex.MatchString(parts[0]) {
		used, ok := usedRectLocked(sheet)
		if !ok {
			return sheet, Rect{}, false
		}
		if colPartRegex.MatchString(parts[0]) {
			l, err1 := NameToCol(parts[0])
			rt, err2 := NameToCol(parts[1])
			if err1 != nil || err2 != nil {
				return nil, Rect{}, false
			}
			area, err := Normalize(NewRect(0, l, used.Bottom, rt))
			return sheet, area, err == nil
		}
		t, err1 := strconv.Atoi(parts[0])
		b, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil || t < 1 || b < 1 {
			return nil, Rect{}, false
		}
		area, err := Normalize(NewRect(t-1, 0, b-1, used.Right))
		return sheet, area, err == nil
	}

	_, area, err := ParseRect(body)
	if err != nil || !sheet.bounds.ContainsRect(area) {
		return nil, Rect{}, false
	}
	return sheet, area, true
}

// usedRectLocked is UsedRect for a sheet whose lock is already held.
func usedRectLocked(s *Sheet) (Rect, bool) {
	used := Rect{Top: -1}
	for rowIdx, rd := range s.rows {
		for colIdx := range rd.cells {
			cell := CellRect(rowIdx, colIdx)
			if used.Top < 0 {
				used = cell
				continue
			}
			used.Top = min(used.Top, cell.Top)
			used.Left = min(used.Left, cell.Left)
			used.Bottom = max(used.Bottom, cell.Bottom)
			used.Right = max(used.Right, cell.Right)
		}
	}
	return used, used.Top >= 0
}

func errorValueOf(err error) ErrorValue {
	var fe *formulaError
	if errors.As(err, &fe) {
		return fe.code
	}
	return ErrorValue(ErrCodeValue)
}

// normalizeResult converts an expr result into a cell value.
func normalizeResult(v any) any {
	switch x := v.(type) {
	case nil:
		return 0.0
	case bool, string, ErrorValue:
		return x
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return ErrorValue(ErrCodeDiv0)
		}
		return x
	case []any:
		return ErrorValue(ErrCodeValue)
	}
	if f, ok := toFloat(v); ok {
		return f
	}
	return ErrorValue(ErrCodeValue)
}

// translate turns a formula into an expr program. Formulas that cannot be expressed
// compile to a fixed error value instead.
func translate(formula string) *compiledFormula {
	cf := &compiledFormula{}
	code, err := translateTokens(strings.TrimPrefix(formula, "="), cf)
	if err != nil {
		cf.failure = errorValueOf(err)
		return cf
	}
	program, err := expr.Compile(code, append([]expr.Option{
		expr.Env(map[string]any{}),
		expr.AllowUndefinedVariables(),
	}, functionOptions()...)...)
	if err != nil {
		cf.failure = ErrorValue(ErrCodeValue)
		return cf
	}
	cf.program = program
	return cf
}

func translateTokens(formula string, cf *compiledFormula) (string, error) {
	ps := efp.ExcelParser()
	tokens := ps.Parse(formula)
	if len(tokens) == 0 {
		return "", errValue(ErrCodeValue)
	}

	var (
		pieces    []string
		groups    []int // start index of each open function call or parenthesis
		termStart int   // start index of the last complete term
		cellVars  = map[string]string{}
		areaVars  = map[string]string{}
	)
	bind := func(ref string) (string, error) {
		_, body := splitSheet(ref)
		key := strings.ToUpper(ref)
		parts := strings.Split(strings.ReplaceAll(body, "$", ""), ":")
		switch {
		case len(parts) == 1 && cellPartRegex.MatchString(parts[0]):
			if v, ok := cellVars[key]; ok {
				return v, nil
			}
			v := "c" + strconv.Itoa(len(cf.cells))
			cellVars[key] = v
			cf.cells = append(cf.cells, ref)
			return v, nil
		case len(parts) == 2 && isAreaPart(parts[0]) && isAreaPart(parts[1]):
			if v, ok := areaVars[key]; ok {
				return v, nil
			}
			v := "a" + strconv.Itoa(len(cf.areas))
			areaVars[key] = v
			cf.areas = append(cf.areas, ref)
			return v, nil
		}
		return "", errValue(ErrCodeName)
	}

	for _, tok := range tokens {
		switch tok.TType {
		case efp.TokenTypeOperand:
			termStart = len(pieces)
			switch tok.TSubType {
			case efp.TokenSubTypeNumber:
				f, err := strconv.ParseFloat(tok.TValue, 64)
				if err != nil {
					return "", errValue(ErrCodeValue)
				}
				pieces = append(pieces, strconv.FormatFloat(f, 'f', -1, 64))
			case efp.TokenSubTypeText:
				pieces = append(pieces, strconv.Quote(tok.TValue))
			case efp.TokenSubTypeLogical:
				pieces = append(pieces, strings.ToLower(tok.TValue))
			case efp.TokenSubTypeError:
				pieces = append(pieces, fmt.Sprintf("ERROR(%q)", tok.TValue))
			case efp.TokenSubTypeRange:
				v, err := bind(tok.TValue)
				if err != nil {
					return "", err
				}
				pieces = append(pieces, v)
			default:
				return "", errValue(ErrCodeValue)
			}
		case efp.TokenTypeFunction:
			if tok.TSubType == efp.TokenSubTypeStart {
				name := strings.ToUpper(tok.TValue)
				if _, ok := formulaFunctions[name]; !ok {
					return "", errValue(ErrCodeName)
				}
				groups = append(groups, len(pieces))
				pieces = append(pieces, name+"(")
				continue
			}
			if len(groups) == 0 {
				return "", errValue(ErrCodeValue)
			}
			termStart, groups = groups[len(groups)-1], groups[:len(groups)-1]
			pieces = append(pieces, ")")
		case efp.TokenTypeSubexpression:
			if tok.TSubType == efp.TokenSubTypeStart {
				groups = append(groups, len(pieces))
				pieces = append(pieces, "(")
				continue
			}
			if len(groups) == 0 {
				return "", errValue(ErrCodeValue)
			}
			termStart, groups = groups[len(groups)-1], groups[:len(groups)-1]
			pieces = append(pieces, ")")
		case efp.TokenTypeArgument:
			pieces = append(pieces, ", ")
		case efp.TokenTypeOperatorPrefix:
			pieces = append(pieces, "-")
		case efp.TokenTypeOperatorInfix:
			op, ok := infixOperators[tok.TValue]
			if !ok || tok.TSubType == efp.TokenSubTypeIntersection || tok.TSubType == efp.TokenSubTypeUnion {
				return "", errValue(ErrCodeValue)
			}
			pieces = append(pieces, " "+op+" ")
		case efp.TokenTypeOperatorPostfix:
			if tok.TValue != "%" || termStart >= len(pieces) {
				return "", errValue(ErrCodeValue)
			}
			term := strings.Join(pieces[termStart:], "")
			pieces = append(pieces[:termStart], "("+term+" / 100)")
		default:
			return "", errValue(ErrCodeValue)
		}
	}
	if len(groups) != 0 {
		return "", errValue(ErrCodeValue)
	}
	return strings.Join(pieces, ""), nil
}

func isAreaPart(p string) bool {
	return cellPartRegex.MatchString(p) || colPartRegex.MatchString(p) || rowPartRegex.MatchString(p)
}

// infixOperators maps sheet operators onto expr operators. Text concatenation has
// no counterpart and is left out.
var infixOperators = map[string]string{
	"+":  "+",
	"-":  "-",
	"*":  "*",
	"/":  "/",
	"^":  "**",
	"=":  "==",
	"<>": "!=",
	"<":  "<",
	">":  ">",
	"<=": "<=",
	">=": ">=",
}

// FormatText returns the displayed text of a cell: numbers in general format,
// booleans as TRUE or FALSE, errors as their code and formulas as their result.
// Formulas without a cached result trigger a recalculation first.
func (b *Book) FormatText(ref CellRef) string {
	s := b.Sheet(ref.Sheet)
	if s == nil {
		if ref.Sheet != "" {
			return ""
		}
		sheets := b.Sheets()
		if len(sheets) == 0 {
			return ""
		}
		s = sheets[0]
	}
	c := s.Cell(ref.Row, ref.Col)
	if c.IsFormula() && c.Cached == nil {
		if err := b.Recalculate(); err != nil {
			b.opts.logger.Warn("recalculation failed", "cell", ref, "err", err)
		}
		c = s.Cell(ref.Row, ref.Col)
	}
	return formatValue(c.Result())
}
