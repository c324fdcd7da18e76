package extensibility

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/comalice/riskbox/internal/core"
)

var operators = map[string]bool{"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true}

// expression is a parsed "key op literal" comparison.
type expression struct {
	key     string
	op      string
	literal any // float64, bool, string or nil
}

// Expr builds a guard from a simple expression such as "lives < 1" or
// "event.total >= 10". Keys address context fields by their mapstructure tag
// (or field name); the "event." prefix addresses the event payload instead.
// Parse errors are reported here, not at evaluation.
func Expr(name, expr string) (*core.Guard, error) {
	e, err := parseExpression(expr)
	if err != nil {
		return nil, fmt.Errorf("guard %q: %w", name, err)
	}
	return core.GuardFunc(name, e.eval), nil
}

// MustExpr is like Expr but panics on error.
func MustExpr(name, expr string) *core.Guard {
	g, err := Expr(name, expr)
	if err != nil {
		panic(err)
	}
	return g
}

func parseExpression(expr string) (*expression, error) {
	parts := strings.Fields(expr)
	if len(parts) != 3 {
		return nil, fmt.Errorf("expression %q: want \"key op value\"", expr)
	}
	key, op, raw := parts[0], parts[1], parts[2]
	if !operators[op] {
		return nil, fmt.Errorf("expression %q: unknown operator %q", expr, op)
	}
	e := &expression{key: key, op: op}
	switch {
	case raw == "true" || raw == "false":
		e.literal = raw == "true"
	case raw == "nil":
		e.literal = nil
	case strings.HasPrefix(raw, `"`):
		s, err := strconv.Unquote(raw)
		if err != nil {
			return nil, fmt.Errorf("expression %q: %w", expr, err)
		}
		e.literal = s
	default:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("expression %q: literal %q is not a number, bool, nil or quoted string", expr, raw)
		}
		e.literal = f
	}
	if _, isNum := e.literal.(float64); !isNum && op != "==" && op != "!=" {
		if _, isStr := e.literal.(string); !isStr {
			return nil, fmt.Errorf("expression %q: operator %s needs a number or string", expr, op)
		}
	}
	return e, nil
}

func (e *expression) eval(ctx any, evt core.Event) (bool, error) {
	source, key := ctx, e.key
	if rest, ok := strings.CutPrefix(e.key, "event."); ok {
		source, key = evt.Data, rest
	}
	fields, err := toMap(source)
	if err != nil {
		return false, err
	}
	v, ok := fields[key]
	if !ok {
		return false, fmt.Errorf("field %q not found", key)
	}
	return e.compare(v)
}

// toMap decodes structs (and pointers to them) into a field map.
func toMap(v any) (map[string]any, error) {
	if m, ok := v.(map[string]any); ok {
		return m, nil
	}
	if v == nil {
		return map[string]any{}, nil
	}
	out := map[string]any{}
	if err := mapstructure.Decode(v, &out); err != nil {
		return nil, fmt.Errorf("decode %T: %w", v, err)
	}
	return out, nil
}

func (e *expression) compare(v any) (bool, error) {
	switch lit := e.literal.(type) {
	case nil:
		isNil := v == nil || (reflect.ValueOf(v).Kind() == reflect.Pointer && reflect.ValueOf(v).IsNil())
		return isNil == (e.op == "=="), nil
	case bool:
		b, ok := v.(bool)
		if !ok {
			return false, fmt.Errorf("field %q is %T, want bool", e.key, v)
		}
		return (b == lit) == (e.op == "=="), nil
	case string:
		s, ok := v.(string)
		if !ok {
			return false, fmt.Errorf("field %q is %T, want string", e.key, v)
		}
		return order(strings.Compare(s, lit), e.op), nil
	default:
		f, ok := toFloat(v)
		if !ok {
			return false, fmt.Errorf("field %q is %T, want number", e.key, v)
		}
		l := lit.(float64)
		switch {
		case f < l:
			return order(-1, e.op), nil
		case f > l:
			return order(1, e.op), nil
		default:
			return order(0, e.op), nil
		}
	}
}

func order(cmp int, op string) bool {
	switch op {
	case "==":
		return cmp == 0
	case "!=":
		return cmp != 0
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	default:
		return cmp >= 0
	}
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
