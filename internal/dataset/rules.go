package dataset

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"campaigniq-backend/internal/catalog"
)

// RuleDef is an operator-defined row rule: the expression is evaluated with
// the coerced row bound to "row", and a true result rejects the row.
type RuleDef struct {
	Dataset    string
	Expression string
	Message    string
}

type rule struct {
	expression string
	message    string
	prog       *vm.Program
}

// RuleSet holds compiled row rules grouped by dataset kind.
type RuleSet struct {
	rules map[catalog.Kind][]*rule
}

// NewRuleSet compiles the rule definitions. A definition naming an unknown
// dataset or carrying an uncompilable expression is a configuration error.
func NewRuleSet(defs []RuleDef) (*RuleSet, error) {
	rs := &RuleSet{rules: make(map[catalog.Kind][]*rule)}
	for _, def := range defs {
		kind, ok := catalog.ParseKind(def.Dataset)
		if !ok {
			return nil, fmt.Errorf("rule for unknown dataset %q", def.Dataset)
		}
		prog, err := expr.Compile(def.Expression, expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule for %s: %w", kind, err)
		}
		rs.rules[kind] = append(rs.rules[kind], &rule{
			expression: def.Expression,
			message:    def.Message,
			prog:       prog,
		})
	}
	return rs, nil
}

// Check evaluates every rule for the kind against one normalized row.
func (rs *RuleSet) Check(kind catalog.Kind, rowIndex int, row map[string]any) []RowError {
	var errs []RowError
	for _, r := range rs.rules[kind] {
		env := map[string]any{"row": row}
		result, err := expr.Run(r.prog, env)
		if err != nil {
			errs = append(errs, RowError{
				Row: rowIndex, Rule: "expression",
				Message: fmt.Sprintf("rule evaluation error: %v", err),
			})
			continue
		}
		violated, ok := result.(bool)
		if !ok || !violated {
			continue
		}
		msg := r.message
		if msg == "" {
			msg = fmt.Sprintf("rule violated: %s", r.expression)
		}
		errs = append(errs, RowError{Row: rowIndex, Rule: "expression", Message: msg})
	}
	return errs
}
