package xlmedia

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ConditionEvaluator evaluates boolean conditions against a variable map.
type ConditionEvaluator interface {
	IsConditionTrue(condition string, env map[string]any) (bool, error)
}

// exprEvaluator implements ConditionEvaluator using expr-lang/expr.
type exprEvaluator struct {
	cache sync.Map // condition string → compiled *vm.Program
}

// NewConditionEvaluator creates an evaluator backed by expr-lang/expr.
func NewConditionEvaluator() ConditionEvaluator {
	return &exprEvaluator{}
}

func (e *exprEvaluator) IsConditionTrue(condition string, env map[string]any) (bool, error) {
	program, err := e.compile(condition)
	if err != nil {
		return false, fmt.Errorf("compile condition %q: %w", condition, err)
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate condition %q: %w", condition, err)
	}
	if result == nil {
		return false, nil
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q evaluated to %T, expected bool", condition, result)
	}
	return b, nil
}

// compile leaves variables untyped so one program serves every env shape.
func (e *exprEvaluator) compile(condition string) (*vm.Program, error) {
	if cached, ok := e.cache.Load(condition); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(condition, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}
	e.cache.Store(condition, program)
	return program, nil
}

// placementEnv exposes a placement to conditions. Every key is always
// present, so br and ext are nil when the geometry lacks them.
func placementEnv(p *ImagePlacement) map[string]any {
	g := p.Range
	env := map[string]any{
		"type":         string(TypeImage),
		"imageId":      int(p.ImageID),
		"sheetImageId": p.SheetImageID,
		"editAs":       string(g.EditAs),
		"tl":           map[string]any{"col": g.TL.Col, "row": g.TL.Row},
		"br":           nil,
		"ext":          nil,
		"hyperlink":    "",
		"tooltip":      "",
	}
	if g.BR != nil {
		env["br"] = map[string]any{"col": g.BR.Col, "row": g.BR.Row}
	}
	if g.Ext != nil {
		env["ext"] = map[string]any{"width": g.Ext.Width, "height": g.Ext.Height}
	}
	if g.Hyperlinks != nil {
		env["hyperlink"] = g.Hyperlinks.Hyperlink
		env["tooltip"] = g.Hyperlinks.Tooltip
	}
	return env
}

// Query returns the anchored placements for which condition holds, in
// insertion order. Example: `editAs == "absolute" && tl.col >= 2`.
// An empty condition matches everything.
func (ws *Worksheet) Query(condition string) ([]ImagePlacement, error) {
	if condition == "" {
		return ws.Images(), nil
	}
	var out []ImagePlacement
	for _, p := range ws.images {
		ok, err := ws.opts.evaluator.IsConditionTrue(condition, placementEnv(p))
		if err != nil {
			return nil, fmt.Errorf("query sheet %q: %w", ws.name, err)
		}
		if ok {
			out = append(out, ImagePlacement{SheetImageID: p.SheetImageID, ImageID: p.ImageID, Range: p.Range.clone()})
		}
	}
	return out, nil
}
