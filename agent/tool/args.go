package tool

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
)

// argReader reads loosely typed model arguments and keeps the first error.
type argReader struct {
	args  map[string]any
	first error
}

func (a *argReader) fail(err error) {
	if a.first == nil {
		a.first = err
	}
}

func (a *argReader) err() error {
	return a.first
}

func (a *argReader) raw(key string) any {
	return a.args[key]
}

func (a *argReader) requiredString(key string) (string, error) {
	s := a.optionalString(key)
	if a.first != nil {
		return "", a.first
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: %s is required", contractx.ErrInvalidArgument, key)
	}
	return s, nil
}

func (a *argReader) optionalString(key string) string {
	v, ok := a.args[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		a.fail(fmt.Errorf("%w: %s must be a string", contractx.ErrInvalidArgument, key))
		return ""
	}
	return s
}

// stringList accepts a JSON array of strings or a comma-separated string.
func (a *argReader) stringList(key string) []string {
	switch v := a.args[key].(type) {
	case nil:
		return nil
	case []string:
		return v
	case string:
		return strings.Split(v, ",")
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				a.fail(fmt.Errorf("%w: %s[%d] must be a string", contractx.ErrInvalidArgument, key, i))
				return nil
			}
			out = append(out, s)
		}
		return out
	default:
		a.fail(fmt.Errorf("%w: %s must be a list of strings", contractx.ErrInvalidArgument, key))
		return nil
	}
}
