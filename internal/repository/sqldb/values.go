package sqldb

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/media-catalog/internal/apperror"
	"github.com/sakif/media-catalog/internal/entity"
	"github.com/sakif/media-catalog/internal/repository"
)

// VALIDATION MESSAGES:
// Constraint failures are reported with the exact text clients have always
// seen, one line per failing column, joined with ",\n":
//
//	notNull Violation: Must provide an album name
//	Validation error: The album name cannot be empty
//	Validation error: Validation isEmail on email failed
//	Validation error: Validation isInt on position failed
//
// A required column without a custom null message reports
// "<Model>.<field> cannot be null".

var validate = validator.New()

// assignment is one column/value pair ready to be bound.
type assignment struct {
	column entity.Column
	value  any
}

// prepare coerces and validates fields against the columns of kind.
// On create every required column must be present; on update only the
// supplied columns are checked. Unknown fields are ignored.
func prepare(kind entity.Kind, fields repository.Fields, creating bool) ([]assignment, error) {
	var (
		assigns  []assignment
		messages []string
		first    string
	)
	fail := func(c entity.Column, msg string) {
		if first == "" {
			first = c.Field
		}
		messages = append(messages, msg)
	}

	for _, c := range kind.Columns() {
		raw, present := fields[c.Field]
		if !present {
			if creating && c.Required {
				fail(c, nullViolation(kind, c))
			}
			continue
		}
		if raw == nil {
			if c.Required {
				fail(c, nullViolation(kind, c))
				continue
			}
			assigns = append(assigns, assignment{column: c, value: nil})
			continue
		}

		value, msg := coerce(c, raw)
		if msg != "" {
			fail(c, msg)
			continue
		}
		assigns = append(assigns, assignment{column: c, value: value})
	}

	if len(messages) > 0 {
		return nil, apperror.ValidationFailed(first, strings.Join(messages, ",\n"))
	}
	return assigns, nil
}

func nullViolation(kind entity.Kind, c entity.Column) string {
	if c.NullMessage != "" {
		return "notNull Violation: " + c.NullMessage
	}
	return "notNull Violation: " + kind.Model() + "." + c.Field + " cannot be null"
}

func emptyViolation(c entity.Column) string {
	if c.EmptyMessage != "" {
		return "Validation error: " + c.EmptyMessage
	}
	return "Validation error: " + c.Field + " cannot be empty"
}

// coerce converts a decoded payload value to the column's storage type.
// A non-empty second result is the violation message.
func coerce(c entity.Column, raw any) (any, string) {
	if c.Type == entity.Integer {
		return coerceInt(c, raw)
	}

	s, ok := stringValue(raw)
	if !ok {
		return nil, "string violation: " + c.Field + " cannot be an array or an object"
	}
	if s == "" {
		if c.NotEmpty {
			return nil, emptyViolation(c)
		}
		return s, ""
	}
	if c.Type == entity.Email {
		if err := validate.Var(s, "email"); err != nil {
			return nil, "Validation error: Validation isEmail on " + c.Field + " failed"
		}
	}
	return s, ""
}

// stringValue accepts strings and scalars; numbers and booleans are
// stored in their textual form.
func stringValue(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool, int, int64, float64:
		return fmt.Sprint(v), true
	default:
		return "", false
	}
}

func coerceInt(c entity.Column, raw any) (any, string) {
	invalid := "Validation error: Validation isInt on " + c.Field + " failed"

	switch v := raw.(type) {
	case int:
		return v, ""
	case int64:
		return int(v), ""
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, invalid
		}
		return int(v), ""
	case json.Number:
		n, err := strconv.Atoi(v.String())
		if err != nil {
			return nil, invalid
		}
		return n, ""
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			if c.NotEmpty {
				return nil, emptyViolation(c)
			}
			return nil, ""
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, invalid
		}
		return n, ""
	default:
		return nil, invalid
	}
}
