package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
	lazyx "github.com/tanpawarit/Chative-Student-Advisor/pkg/lazy"
)

// Store is the read-only, process-lifetime view of the catalog. It is
// constructed once and handed to every component that needs it.
type Store struct {
	courses   *lazyx.Value[[]Course]
	offerings *lazyx.Value[[]TermOffering]
}

func NewStore(src Source) (*Store, error) {
	if src == nil {
		return nil, errors.New("catalog source is required")
	}
	return &Store{
		courses:   lazyx.New[[]Course](src.LoadCourses),
		offerings: lazyx.New[[]TermOffering](src.LoadOfferings),
	}, nil
}

// Courses returns the catalog, reading the source on first use only.
func (s *Store) Courses(ctx context.Context) ([]Course, error) {
	courses, err := s.courses.Get(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Course, len(courses))
	for i, c := range courses {
		out[i] = c.clone()
	}
	return out, nil
}

// Offerings returns the term offerings, reading the source on first use only.
func (s *Store) Offerings(ctx context.Context) ([]TermOffering, error) {
	offerings, err := s.offerings.Get(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TermOffering, len(offerings))
	for i, o := range offerings {
		out[i] = o.clone()
	}
	return out, nil
}

// CourseDetails looks up a course by exact id. The first match wins.
func (s *Store) CourseDetails(ctx context.Context, courseID string) (Course, error) {
	if strings.TrimSpace(courseID) == "" {
		return Course{}, fmt.Errorf("%w: course_id is required", contractx.ErrInvalidArgument)
	}

	courses, err := s.courses.Get(ctx)
	if err != nil {
		return Course{}, err
	}
	for _, c := range courses {
		if c.CourseID == courseID {
			return c.clone(), nil
		}
	}
	return Course{}, fmt.Errorf("%w: course %q", contractx.ErrNotFound, courseID)
}

// FindOffering returns the offering for term (case-insensitive) and year.
func (s *Store) FindOffering(ctx context.Context, term string, year int) (TermOffering, error) {
	if strings.TrimSpace(term) == "" {
		return TermOffering{}, fmt.Errorf("%w: term is required", contractx.ErrInvalidArgument)
	}

	offerings, err := s.offerings.Get(ctx)
	if err != nil {
		return TermOffering{}, err
	}
	for _, o := range offerings {
		if o.Matches(term, year) {
			return o.clone(), nil
		}
	}
	return TermOffering{}, fmt.Errorf("%w: no offerings for %s %d", contractx.ErrTermNotFound, strings.TrimSpace(term), year)
}

// TermCourses returns the sorted, de-duplicated course ids offered in a term.
func (s *Store) TermCourses(ctx context.Context, term string, year int) ([]string, error) {
	offering, err := s.FindOffering(ctx, term, year)
	if err != nil {
		return nil, err
	}
	ids := offering.Courses
	slices.Sort(ids)
	return slices.Compact(ids), nil
}
