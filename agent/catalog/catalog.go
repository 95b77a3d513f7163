package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
)

// Course is one catalog entry. CourseID is matched exactly and case-sensitively.
type Course struct {
	CourseID      string   `json:"course_id" yaml:"course_id"`
	Title         string   `json:"title" yaml:"title"`
	Description   string   `json:"description,omitempty" yaml:"description,omitempty"`
	Credits       int      `json:"credits,omitempty" yaml:"credits,omitempty"`
	Prerequisites []string `json:"prerequisites" yaml:"prerequisites"`
}

func (c Course) clone() Course {
	out := c
	out.Prerequisites = append([]string{}, c.Prerequisites...)
	return out
}

// TermOffering lists the courses offered in one (term, year) pair.
type TermOffering struct {
	Term    string   `json:"term" yaml:"term"`
	Year    int      `json:"year" yaml:"year"`
	Courses []string `json:"courses" yaml:"courses"`
}

// Matches compares term case-insensitively and year exactly.
func (o TermOffering) clone() TermOffering {
	out := o
	out.Courses = append([]string{}, o.Courses...)
	return out
}

func (o TermOffering) Matches(term string, year int) bool {
	return o.Year == year && strings.EqualFold(strings.TrimSpace(o.Term), strings.TrimSpace(term))
}

func termKey(term string, year int) string {
	return fmt.Sprintf("%s/%d", strings.ToLower(strings.TrimSpace(term)), year)
}

// ParseYear accepts the shapes a year arrives in from tool arguments: Go
// integers, integral floats (JSON numbers) and numeric strings.
func ParseYear(v any) (int, error) {
	switch y := v.(type) {
	case int:
		return y, nil
	case int32:
		return int(y), nil
	case int64:
		return int(y), nil
	case float64:
		if math.IsNaN(y) || math.IsInf(y, 0) || y != math.Trunc(y) {
			return 0, fmt.Errorf("%w: year %v is not an integer", contractx.ErrInvalidArgument, y)
		}
		return int(y), nil
	case float32:
		return ParseYear(float64(y))
	case string:
		trimmed := strings.TrimSpace(y)
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, fmt.Errorf("%w: year %q is not a number", contractx.ErrInvalidArgument, y)
		}
		return n, nil
	case nil:
		return 0, fmt.Errorf("%w: year is required", contractx.ErrInvalidArgument)
	default:
		return 0, fmt.Errorf("%w: unsupported year type %T", contractx.ErrInvalidArgument, v)
	}
}

func validateCourses(courses []Course) error {
	seen := make(map[string]struct{}, len(courses))
	for i, c := range courses {
		if strings.TrimSpace(c.CourseID) == "" {
			return fmt.Errorf("%w: course #%d has empty course_id", contractx.ErrDataUnavailable, i)
		}
		if _, dup := seen[c.CourseID]; dup {
			return fmt.Errorf("%w: duplicate course_id %q", contractx.ErrDataUnavailable, c.CourseID)
		}
		seen[c.CourseID] = struct{}{}
	}
	return nil
}

func validateOfferings(offerings []TermOffering) error {
	seen := make(map[string]struct{}, len(offerings))
	for i, o := range offerings {
		if strings.TrimSpace(o.Term) == "" {
			return fmt.Errorf("%w: offering #%d has empty term", contractx.ErrDataUnavailable, i)
		}
		key := termKey(o.Term, o.Year)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate offering for %s %d", contractx.ErrDataUnavailable, o.Term, o.Year)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func normalizeCourses(courses []Course) []Course {
	for i := range courses {
		if courses[i].Prerequisites == nil {
			courses[i].Prerequisites = []string{}
		}
	}
	return courses
}
