package eligibility

import (
	"context"
	"errors"
	"strings"
	"testing"

	catalogx "github.com/tanpawarit/Chative-Student-Advisor/agent/catalog"
	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
	studentx "github.com/tanpawarit/Chative-Student-Advisor/agent/student"
)

type fakeSource struct {
	courses   []catalogx.Course
	offerings []catalogx.TermOffering
}

func (f fakeSource) LoadCourses(context.Context) ([]catalogx.Course, error) {
	return f.courses, nil
}

func (f fakeSource) LoadOfferings(context.Context) ([]catalogx.TermOffering, error) {
	return f.offerings, nil
}

func newTestResolver(t *testing.T, src fakeSource) *Resolver {
	t.Helper()
	store, err := catalogx.NewStore(src)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	r, err := NewResolver(store)
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	return r
}

func scenarioSource() fakeSource {
	return fakeSource{
		courses: []catalogx.Course{
			{CourseID: "CS101", Title: "Intro", Prerequisites: []string{}},
			{CourseID: "CS102", Title: "Data Structures", Prerequisites: []string{"CS101"}},
		},
		offerings: []catalogx.TermOffering{
			{Term: "Fall", Year: 2024, Courses: []string{"CS101", "CS102"}},
		},
	}
}

func ids(courses []catalogx.Course) []string {
	out := make([]string, 0, len(courses))
	for _, c := range courses {
		out = append(out, c.CourseID)
	}
	return out
}

func TestEnrollableScenario(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, scenarioSource())

	got, err := r.Enrollable(context.Background(), "Fall", 2024, studentx.Student{StudentID: "S1"})
	if err != nil {
		t.Fatalf("Enrollable() error = %v", err)
	}
	if strings.Join(ids(got), ",") != "CS101" {
		t.Fatalf("Enrollable(no history) = %v, want [CS101]", ids(got))
	}

	got, err = r.Enrollable(context.Background(), "fall", "2024", studentx.Student{
		StudentID:    "S1",
		CoursesTaken: []string{"CS101"},
	})
	if err != nil {
		t.Fatalf("Enrollable() error = %v", err)
	}
	if strings.Join(ids(got), ",") != "CS102" {
		t.Fatalf("Enrollable(CS101 taken) = %v, want [CS102]", ids(got))
	}
}

func TestEnrollableUnknownTerm(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, scenarioSource())

	tests := []struct {
		term string
		year any
	}{
		{"Winter", 2024},
		{"Fall", 2023},
		{"Spring", "2030"},
	}
	for _, tt := range tests {
		got, err := r.Enrollable(context.Background(), tt.term, tt.year, studentx.Student{})
		if !errors.Is(err, contractx.ErrTermNotFound) {
			t.Fatalf("Enrollable(%s %v) error = %v, want ErrTermNotFound", tt.term, tt.year, err)
		}
		if !strings.Contains(err.Error(), tt.term) {
			t.Fatalf("error %q must name term %q", err.Error(), tt.term)
		}
		if len(got) != 0 {
			t.Fatalf("Enrollable(%s %v) = %v, want empty", tt.term, tt.year, ids(got))
		}
	}
}

func TestEnrollableInvalidYear(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, scenarioSource())
	_, err := r.Enrollable(context.Background(), "Fall", "next year", studentx.Student{})
	if !errors.Is(err, contractx.ErrInvalidArgument) {
		t.Fatalf("Enrollable() error = %v, want ErrInvalidArgument", err)
	}
}

func TestEnrollableNoPartialPrerequisites(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, fakeSource{
		courses: []catalogx.Course{
			{CourseID: "CS230", Prerequisites: []string{"CS101", "MATH131"}},
			{CourseID: "STAT155"},
		},
		offerings: []catalogx.TermOffering{
			{Term: "Spring", Year: 2025, Courses: []string{"CS230", "STAT155"}},
		},
	})

	got, err := r.Enrollable(context.Background(), "SPRING", 2025, studentx.Student{CoursesTaken: []string{"CS101"}})
	if err != nil {
		t.Fatalf("Enrollable() error = %v", err)
	}
	if strings.Join(ids(got), ",") != "STAT155" {
		t.Fatalf("Enrollable() = %v, want [STAT155]", ids(got))
	}
}

func TestFilterSortedAndUnique(t *testing.T) {
	t.Parallel()

	courses := []catalogx.Course{
		{CourseID: "MATH131"},
		{CourseID: "CS260"},
		{CourseID: "CS218"},
		{CourseID: "CS260"},
		{CourseID: "EE120", Prerequisites: []string{"PHYS101"}},
		{CourseID: "CS224"},
	}
	offered := []string{"CS224", "CS260", "MATH131", "CS218", "EE120", "CS999"}

	got := ids(Filter(courses, offered, []string{"CS224"}))
	want := []string{"CS218", "CS260", "MATH131"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("Filter() = %v, want %v", got, want)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1] >= got[i] {
			t.Fatalf("Filter() not strictly ascending at %d: %v", i, got)
		}
	}
}

func TestEnrollableCaseSensitiveIDs(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, scenarioSource())
	got, err := r.Enrollable(context.Background(), "Fall", 2024, studentx.Student{CoursesTaken: []string{"cs101"}})
	if err != nil {
		t.Fatalf("Enrollable() error = %v", err)
	}
	if strings.Join(ids(got), ",") != "CS101" {
		t.Fatalf("Enrollable() = %v, want [CS101] since cs101 does not match CS101", ids(got))
	}
}
