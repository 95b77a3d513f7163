package adk

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"

	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
	toolx "github.com/tanpawarit/Chative-Student-Advisor/agent/tool"
)

// FAQArgs is the input of faq_answer.
type FAQArgs struct {
	Question string `json:"question"`
}

// TermArgs selects a term. Zero values fall back to the session defaults.
type TermArgs struct {
	Term string `json:"term,omitempty"`
	// Year is a JSON number or a numeric string; catalog.ParseYear decides.
	Year      any    `json:"year,omitempty"`
	StudentID string `json:"student_id,omitempty"`
}

// CourseArgs is the input of course_details.
type CourseArgs struct {
	CourseID string `json:"course_id"`
}

// ScheduleArgs is the input of render_schedule.
type ScheduleArgs struct {
	CourseIDs []string `json:"course_ids"`
	Term      string   `json:"term,omitempty"`
	Year      any      `json:"year,omitempty"`
	StudentID string   `json:"student_id,omitempty"`
}

// Handlers adapts the shared tool executors to ADK function tools. Gemini
// function names may not contain dots, so each tool is exposed under an
// underscore alias.
type Handlers struct {
	rc        contractx.RequestContext
	talkative toolx.Executor
	scheduler toolx.Executor
}

func NewHandlers(box *toolx.Toolbox, rc contractx.RequestContext) *Handlers {
	return &Handlers{
		rc:        rc,
		talkative: toolx.NewExecutor(contractx.AgentTypeTalkative, box),
		scheduler: toolx.NewExecutor(contractx.AgentTypeScheduler, box),
	}
}

func (h *Handlers) AnswerFAQ(ctx context.Context, args FAQArgs) (map[string]any, error) {
	return h.talkative(ctx, h.rc, toolx.ToolFAQAnswer, map[string]any{
		"question": args.Question,
	}).Map(), nil
}

func (h *Handlers) EnrollableCourses(ctx context.Context, args TermArgs) (map[string]any, error) {
	return h.scheduler(ctx, h.rc, toolx.ToolCoursesEnrollable, termArgs(args.Term, args.Year, args.StudentID)).Map(), nil
}

func (h *Handlers) CourseDetails(ctx context.Context, args CourseArgs) (map[string]any, error) {
	return h.scheduler(ctx, h.rc, toolx.ToolCoursesDetails, map[string]any{
		"course_id": args.CourseID,
	}).Map(), nil
}

func (h *Handlers) TermOfferings(ctx context.Context, args TermArgs) (map[string]any, error) {
	return h.scheduler(ctx, h.rc, toolx.ToolCoursesOfferings, termArgs(args.Term, args.Year, "")).Map(), nil
}

func (h *Handlers) RenderSchedule(ctx context.Context, args ScheduleArgs) (map[string]any, error) {
	m := termArgs(args.Term, args.Year, args.StudentID)
	ids := make([]any, 0, len(args.CourseIDs))
	for _, id := range args.CourseIDs {
		ids = append(ids, id)
	}
	m["course_ids"] = ids
	return h.scheduler(ctx, h.rc, toolx.ToolScheduleRender, m).Map(), nil
}

func termArgs(term string, year any, studentID string) map[string]any {
	m := map[string]any{}
	if v := strings.TrimSpace(term); v != "" {
		m["term"] = v
	}
	if year != nil {
		m["year"] = year
	}
	if v := strings.TrimSpace(studentID); v != "" {
		m["student_id"] = v
	}
	return m
}

// TalkativeTools returns the function tools of the talkative agent.
func (h *Handlers) TalkativeTools() ([]tool.Tool, error) {
	faq, err := functiontool.New(functiontool.Config{
		Name:        "faq_answer",
		Description: "Answer a general advising question from the FAQ list. Input: the student's question.",
	}, func(ctx tool.Context, args FAQArgs) (map[string]any, error) {
		return h.AnswerFAQ(ctx, args)
	})
	if err != nil {
		return nil, fmt.Errorf("create faq_answer tool: %w", err)
	}
	return []tool.Tool{faq}, nil
}

// SchedulerTools returns the function tools of the scheduler agent.
func (h *Handlers) SchedulerTools() ([]tool.Tool, error) {
	enrollable, err := functiontool.New(functiontool.Config{
		Name:        "enrollable_courses",
		Description: "List the courses the student can enroll in for a term: offered, not yet taken, prerequisites met.",
	}, func(ctx tool.Context, args TermArgs) (map[string]any, error) {
		return h.EnrollableCourses(ctx, args)
	})
	if err != nil {
		return nil, fmt.Errorf("create enrollable_courses tool: %w", err)
	}

	details, err := functiontool.New(functiontool.Config{
		Name:        "course_details",
		Description: "Return the catalog entry for one exact, case-sensitive course id.",
	}, func(ctx tool.Context, args CourseArgs) (map[string]any, error) {
		return h.CourseDetails(ctx, args)
	})
	if err != nil {
		return nil, fmt.Errorf("create course_details tool: %w", err)
	}

	offerings, err := functiontool.New(functiontool.Config{
		Name:        "term_offerings",
		Description: "List every course id offered in a term.",
	}, func(ctx tool.Context, args TermArgs) (map[string]any, error) {
		return h.TermOfferings(ctx, args)
	})
	if err != nil {
		return nil, fmt.Errorf("create term_offerings tool: %w", err)
	}

	render, err := functiontool.New(functiontool.Config{
		Name:        "render_schedule",
		Description: "Save the confirmed course selection as the student's schedule for a term.",
	}, func(ctx tool.Context, args ScheduleArgs) (map[string]any, error) {
		return h.RenderSchedule(ctx, args)
	})
	if err != nil {
		return nil, fmt.Errorf("create render_schedule tool: %w", err)
	}

	return []tool.Tool{enrollable, details, offerings, render}, nil
}
