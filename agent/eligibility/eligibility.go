// Package eligibility decides which catalog courses a student may enroll in
// for a given term.
package eligibility

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	catalogx "github.com/tanpawarit/Chative-Student-Advisor/agent/catalog"
	studentx "github.com/tanpawarit/Chative-Student-Advisor/agent/student"
)

// Catalog is the slice of the catalog store the resolver reads.
type Catalog interface {
	Courses(ctx context.Context) ([]catalogx.Course, error)
	FindOffering(ctx context.Context, term string, year int) (catalogx.TermOffering, error)
}

type Resolver struct {
	catalog Catalog
}

func NewResolver(catalog Catalog) (*Resolver, error) {
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}
	return &Resolver{catalog: catalog}, nil
}

// Enrollable returns the courses offered in (term, year) that the student has
// not taken and whose prerequisites are all taken, sorted by course id.
// year accepts anything catalog.ParseYear does.
func (r *Resolver) Enrollable(ctx context.Context, term string, year any, student studentx.Student) ([]catalogx.Course, error) {
	y, err := catalogx.ParseYear(year)
	if err != nil {
		return []catalogx.Course{}, err
	}

	offering, err := r.catalog.FindOffering(ctx, term, y)
	if err != nil {
		return []catalogx.Course{}, err
	}
	courses, err := r.catalog.Courses(ctx)
	if err != nil {
		return []catalogx.Course{}, err
	}

	out := Filter(courses, offering.Courses, student.CoursesTaken)
	log.Debug().
		Str("student_id", student.StudentID).
		Str("term", strings.TrimSpace(term)).
		Int("year", y).
		Int("enrollable", len(out)).
		Msg("resolved enrollable courses")
	return out, nil
}

// Filter is the pure eligibility rule over one snapshot of the data.
func Filter(courses []catalogx.Course, offered []string, taken []string) []catalogx.Course {
	offeredSet := toSet(offered)
	takenSet := toSet(taken)

	out := make([]catalogx.Course, 0, len(offeredSet))
	seen := make(map[string]struct{}, len(offeredSet))
	for _, c := range courses {
		if _, ok := offeredSet[c.CourseID]; !ok {
			continue
		}
		if _, ok := takenSet[c.CourseID]; ok {
			continue
		}
		if _, dup := seen[c.CourseID]; dup {
			continue
		}
		if !prerequisitesMet(c.Prerequisites, takenSet) {
			continue
		}
		seen[c.CourseID] = struct{}{}
		out = append(out, c)
	}

	slices.SortFunc(out, func(a, b catalogx.Course) int {
		return strings.Compare(a.CourseID, b.CourseID)
	})
	return out
}

func prerequisitesMet(prereqs []string, taken map[string]struct{}) bool {
	for _, p := range prereqs {
		if _, ok := taken[p]; !ok {
			return false
		}
	}
	return true
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
