package policy

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ConditionOperator names a comparison a Condition performs against a field
// of the evaluation context.
type ConditionOperator string

const (
	OpEquals      ConditionOperator = "equals"
	OpNotEquals   ConditionOperator = "not-equals"
	OpContains    ConditionOperator = "contains"
	OpNotContains ConditionOperator = "not-contains"
	OpMatches     ConditionOperator = "matches"
	OpGreaterThan ConditionOperator = "greater-than"
	OpLessThan    ConditionOperator = "less-than"
	OpIn          ConditionOperator = "in"
	OpNotIn       ConditionOperator = "not-in"
	OpExists      ConditionOperator = "exists"
	OpNotExists   ConditionOperator = "not-exists"
)

// CombinationMode controls how a rule's Conditions are joined.
type CombinationMode string

const (
	// CombineAllMustMatch requires every condition to hold (logical AND).
	// This is the zero-value default.
	CombineAllMustMatch CombinationMode = "all-must-match"
	// CombineAnyMustMatch requires at least one condition to hold (logical OR).
	CombineAnyMustMatch CombinationMode = "any-must-match"
)

// Condition is a single (field, operator, value) tuple evaluated against the
// fields NewUniversalPolicyEnvironment exposes (tool_name, tool_args,
// user_roles, risk_score, framework, framework_attrs, session_id,
// identity_id, identity_name, request_time, arguments, identity_roles).
//
// For OpExists/OpNotExists, Field names a map-typed variable (tool_args,
// framework_attrs) and Value names the key to probe.
type Condition struct {
	Field    string
	Operator ConditionOperator
	Value    any
}

// fieldNamePattern restricts Field to a bare CEL identifier, so a Condition
// can never inject arbitrary expression text into the generated program.
var fieldNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// buildConditionExpr compiles a rule's structured Conditions into a single
// CEL boolean expression, joined per combination. An empty condition list
// always matches.
func buildConditionExpr(conditions []Condition, combination CombinationMode) (string, error) {
	if len(conditions) == 0 {
		return "true", nil
	}

	parts := make([]string, 0, len(conditions))
	for _, c := range conditions {
		expr, err := compileCondition(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, "("+expr+")")
	}

	joiner := " && "
	if combination == CombineAnyMustMatch {
		joiner = " || "
	}
	return strings.Join(parts, joiner), nil
}

// compileCondition translates one Condition into a CEL expression fragment.
func compileCondition(c Condition) (string, error) {
	if !fieldNamePattern.MatchString(c.Field) {
		return "", fmt.Errorf("condition: invalid field %q", c.Field)
	}

	lit, err := celLiteral(c.Value)
	if err != nil {
		return "", fmt.Errorf("condition: field %s: %w", c.Field, err)
	}

	switch c.Operator {
	case OpEquals:
		return fmt.Sprintf("%s == %s", c.Field, lit), nil
	case OpNotEquals:
		return fmt.Sprintf("%s != %s", c.Field, lit), nil
	case OpContains:
		return fmt.Sprintf("%s.contains(%s)", c.Field, lit), nil
	case OpNotContains:
		return fmt.Sprintf("!(%s.contains(%s))", c.Field, lit), nil
	case OpMatches:
		return fmt.Sprintf("%s.matches(%s)", c.Field, lit), nil
	case OpGreaterThan:
		return fmt.Sprintf("%s > %s", c.Field, lit), nil
	case OpLessThan:
		return fmt.Sprintf("%s < %s", c.Field, lit), nil
	case OpIn:
		return fmt.Sprintf("%s in %s", lit, c.Field), nil
	case OpNotIn:
		return fmt.Sprintf("!(%s in %s)", lit, c.Field), nil
	case OpExists:
		return fmt.Sprintf("%s in %s", lit, c.Field), nil
	case OpNotExists:
		return fmt.Sprintf("!(%s in %s)", lit, c.Field), nil
	default:
		return "", fmt.Errorf("condition: unsupported operator %q", c.Operator)
	}
}

// celLiteral renders a Go value as a CEL literal. Numeric values are always
// emitted with a decimal point so they bind to double-typed fields like
// risk_score rather than CEL's separate int type.
func celLiteral(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strconv.Quote(val), nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return formatCELFloat(float64(val)), nil
	case int64:
		return formatCELFloat(float64(val)), nil
	case float64:
		return formatCELFloat(val), nil
	case float32:
		return formatCELFloat(float64(val)), nil
	default:
		return "", fmt.Errorf("unsupported condition value type %T", v)
	}
}

func formatCELFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
