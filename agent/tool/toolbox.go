package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	catalogx "github.com/tanpawarit/Chative-Student-Advisor/agent/catalog"
	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
	faqx "github.com/tanpawarit/Chative-Student-Advisor/agent/faq"
	schedulex "github.com/tanpawarit/Chative-Student-Advisor/agent/schedule"
	studentx "github.com/tanpawarit/Chative-Student-Advisor/agent/student"
)

const (
	msgNoEnrollable = "Based on your history, there are no new courses currently available for you to take."
	msgEnrollable   = "Based on your academic history, here are some courses you're eligible to enroll in: "
)

type FAQ interface {
	Answer(ctx context.Context, question string) (faqx.Answer, error)
}

type Catalog interface {
	CourseDetails(ctx context.Context, courseID string) (catalogx.Course, error)
	TermCourses(ctx context.Context, term string, year int) ([]string, error)
}

type Eligibility interface {
	Enrollable(ctx context.Context, term string, year any, student studentx.Student) ([]catalogx.Course, error)
}

type Scheduler interface {
	Render(ctx context.Context, student studentx.Student, term string, year any, courseIDs []string) (schedulex.Schedule, error)
}

// Toolbox binds the advising services to the tool boundary. Every method
// returns a tagged result; domain failures never escape as Go errors.
type Toolbox struct {
	faq         FAQ
	catalog     Catalog
	eligibility Eligibility
	students    studentx.Provider
	schedules   Scheduler
}

type Services struct {
	FAQ         FAQ
	Catalog     Catalog
	Eligibility Eligibility
	Students    studentx.Provider
	Schedules   Scheduler
}

func NewToolbox(s Services) (*Toolbox, error) {
	switch {
	case s.FAQ == nil:
		return nil, errors.New("faq service is required")
	case s.Catalog == nil:
		return nil, errors.New("catalog is required")
	case s.Eligibility == nil:
		return nil, errors.New("eligibility resolver is required")
	case s.Students == nil:
		return nil, errors.New("student provider is required")
	}
	return &Toolbox{
		faq:         s.FAQ,
		catalog:     s.Catalog,
		eligibility: s.Eligibility,
		students:    s.Students,
		schedules:   s.Schedules,
	}, nil
}

func (b *Toolbox) AnswerFAQ(ctx context.Context, question string) contractx.ToolResult {
	ans, err := b.faq.Answer(ctx, question)
	if err != nil {
		if errors.Is(err, contractx.ErrNoMatch) {
			r := contractx.Failed(ToolFAQAnswer, payloadAnswer, "", err)
			r.Message = faqx.FallbackMessage
			return r
		}
		return contractx.Failed(ToolFAQAnswer, payloadAnswer, "", err)
	}
	return contractx.Succeeded(ToolFAQAnswer, payloadAnswer, ans.Answer, "")
}

// EnrollableCourses resolves studentID, falling back to the request context.
func (b *Toolbox) EnrollableCourses(ctx context.Context, rc contractx.RequestContext, term string, year any, studentID string) contractx.ToolResult {
	empty := []catalogx.Course{}

	st, err := b.student(ctx, rc, studentID)
	if err != nil {
		return contractx.Failed(ToolCoursesEnrollable, payloadCourses, empty, err)
	}
	term, year = withTermDefaults(rc, term, year)

	courses, err := b.eligibility.Enrollable(ctx, term, year, st)
	if err != nil {
		return contractx.Failed(ToolCoursesEnrollable, payloadCourses, empty, err)
	}
	if len(courses) == 0 {
		return contractx.Succeeded(ToolCoursesEnrollable, payloadCourses, empty, msgNoEnrollable)
	}

	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.CourseID)
	}
	return contractx.Succeeded(ToolCoursesEnrollable, payloadCourses, courses, msgEnrollable+strings.Join(ids, ", "))
}

func (b *Toolbox) CourseDetails(ctx context.Context, courseID string) contractx.ToolResult {
	c, err := b.catalog.CourseDetails(ctx, courseID)
	if err != nil {
		return contractx.Failed(ToolCoursesDetails, payloadCourse, map[string]any{}, err)
	}
	return contractx.Succeeded(ToolCoursesDetails, payloadCourse, c, "")
}

func (b *Toolbox) TermOfferings(ctx context.Context, rc contractx.RequestContext, term string, year any) contractx.ToolResult {
	empty := []string{}
	term, year = withTermDefaults(rc, term, year)

	y, err := catalogx.ParseYear(year)
	if err != nil {
		return contractx.Failed(ToolCoursesOfferings, payloadCourses, empty, err)
	}
	ids, err := b.catalog.TermCourses(ctx, term, y)
	if err != nil {
		return contractx.Failed(ToolCoursesOfferings, payloadCourses, empty, err)
	}
	return contractx.Succeeded(ToolCoursesOfferings, payloadCourses, ids,
		fmt.Sprintf("%d courses offered in %s %d", len(ids), strings.TrimSpace(term), y))
}

func (b *Toolbox) RenderSchedule(ctx context.Context, rc contractx.RequestContext, term string, year any, courseIDs []string, studentID string) contractx.ToolResult {
	empty := map[string]any{}
	if b.schedules == nil {
		return contractx.Failed(ToolScheduleRender, payloadSchedule, empty,
			fmt.Errorf("%w: schedule planner is not configured", contractx.ErrDataUnavailable))
	}

	st, err := b.student(ctx, rc, studentID)
	if err != nil {
		return contractx.Failed(ToolScheduleRender, payloadSchedule, empty, err)
	}
	term, year = withTermDefaults(rc, term, year)

	s, err := b.schedules.Render(ctx, st, term, year, courseIDs)
	if err != nil {
		return contractx.Failed(ToolScheduleRender, payloadSchedule, empty, err)
	}
	return contractx.Succeeded(ToolScheduleRender, payloadSchedule, s, schedulex.ConfirmationMessage)
}

func (b *Toolbox) student(ctx context.Context, rc contractx.RequestContext, studentID string) (studentx.Student, error) {
	id := strings.TrimSpace(studentID)
	if id == "" {
		id = strings.TrimSpace(rc.StudentID)
	}
	if id == "" {
		return studentx.Student{}, fmt.Errorf("%w: student_id is required and no student is signed in", contractx.ErrInvalidArgument)
	}
	return b.students.Student(ctx, id)
}

func withTermDefaults(rc contractx.RequestContext, term string, year any) (string, any) {
	if strings.TrimSpace(term) == "" && rc.Term != "" {
		term = rc.Term
	}
	if isBlankYear(year) && rc.Year != 0 {
		year = rc.Year
	}
	return term, year
}

func isBlankYear(year any) bool {
	switch y := year.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(y) == ""
	default:
		return false
	}
}
