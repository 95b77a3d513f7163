// Package student supplies the per-request snapshot of a student's history.
package student

import (
	"context"
	"slices"
	"strings"
)

// Student is the normalized shape every provider returns.
type Student struct {
	StudentID    string   `json:"student_id" yaml:"student_id"`
	Name         string   `json:"name,omitempty" yaml:"name,omitempty"`
	Program      string   `json:"program,omitempty" yaml:"program,omitempty"`
	CoursesTaken []string `json:"courses_taken" yaml:"courses_taken"`
}

// HasTaken reports whether courseID is in the student's history.
func (s Student) HasTaken(courseID string) bool {
	return slices.Contains(s.CoursesTaken, courseID)
}

type Provider interface {
	Student(ctx context.Context, studentID string) (Student, error)
}

func normalizeTaken(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
