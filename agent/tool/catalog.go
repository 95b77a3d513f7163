package tool

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
)

const (
	ToolFAQAnswer         = "faq.answer"
	ToolCoursesEnrollable = "courses.enrollable"
	ToolCoursesDetails    = "courses.details"
	ToolCoursesOfferings  = "courses.offerings"
	ToolScheduleRender    = "schedule.render"
)

const (
	payloadAnswer   = "answer"
	payloadCourses  = "courses"
	payloadCourse   = "course"
	payloadSchedule = "schedule"
)

type Executor func(ctx context.Context, rc contractx.RequestContext, tool string, args map[string]any) contractx.ToolResult

// NewExecutor dispatches the tools owned by agentType. Unknown tools and
// panics inside a tool become error results.
func NewExecutor(agentType contractx.AgentType, box *Toolbox) Executor {
	allowed := make(map[string]struct{})
	for _, info := range InfosForAgent(agentType) {
		allowed[info.Name] = struct{}{}
	}

	return func(ctx context.Context, rc contractx.RequestContext, tool string, args map[string]any) (out contractx.ToolResult) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Str("tool", tool).
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("tool panicked")
				out = contractx.Failed(tool, payloadKeyFor(tool), emptyPayloadFor(tool),
					fmt.Errorf("%w: tool %s failed unexpectedly", contractx.ErrDataUnavailable, tool))
			}
		}()

		if _, ok := allowed[tool]; !ok || box == nil {
			return unavailable(agentType, tool)
		}
		return dispatch(ctx, box, rc, tool, args)
	}
}

func dispatch(ctx context.Context, box *Toolbox, rc contractx.RequestContext, tool string, args map[string]any) contractx.ToolResult {
	a := argReader{args: args}
	switch tool {
	case ToolFAQAnswer:
		q, err := a.requiredString("question")
		if err != nil {
			return contractx.Failed(tool, payloadAnswer, "", err)
		}
		return box.AnswerFAQ(ctx, q)
	case ToolCoursesEnrollable:
		term, year, sid := a.optionalString("term"), a.raw("year"), a.optionalString("student_id")
		if err := a.err(); err != nil {
			return contractx.Failed(tool, payloadCourses, emptyPayloadFor(tool), err)
		}
		return box.EnrollableCourses(ctx, rc, term, year, sid)
	case ToolCoursesDetails:
		id, err := a.requiredString("course_id")
		if err != nil {
			return contractx.Failed(tool, payloadCourse, emptyPayloadFor(tool), err)
		}
		return box.CourseDetails(ctx, id)
	case ToolCoursesOfferings:
		term, year := a.optionalString("term"), a.raw("year")
		if err := a.err(); err != nil {
			return contractx.Failed(tool, payloadCourses, emptyPayloadFor(tool), err)
		}
		return box.TermOfferings(ctx, rc, term, year)
	case ToolScheduleRender:
		term, year, sid := a.optionalString("term"), a.raw("year"), a.optionalString("student_id")
		ids := a.stringList("course_ids")
		if err := a.err(); err != nil {
			return contractx.Failed(tool, payloadSchedule, emptyPayloadFor(tool), err)
		}
		return box.RenderSchedule(ctx, rc, term, year, ids, sid)
	default:
		return contractx.Failed(tool, "", nil, fmt.Errorf("%w: unknown tool %s", contractx.ErrInvalidArgument, tool))
	}
}

func unavailable(agentType contractx.AgentType, tool string) contractx.ToolResult {
	return contractx.Failed(tool, payloadKeyFor(tool), emptyPayloadFor(tool),
		fmt.Errorf("%w: tool=%s is unavailable for agent=%s", contractx.ErrInvalidArgument, tool, agentType))
}

func payloadKeyFor(tool string) string {
	switch tool {
	case ToolFAQAnswer:
		return payloadAnswer
	case ToolCoursesEnrollable, ToolCoursesOfferings:
		return payloadCourses
	case ToolCoursesDetails:
		return payloadCourse
	case ToolScheduleRender:
		return payloadSchedule
	default:
		return ""
	}
}

func emptyPayloadFor(tool string) any {
	switch tool {
	case ToolFAQAnswer:
		return ""
	case ToolCoursesEnrollable, ToolCoursesOfferings:
		return []any{}
	case ToolCoursesDetails, ToolScheduleRender:
		return map[string]any{}
	default:
		return nil
	}
}

func InfosForAgent(agentType contractx.AgentType) []*schema.ToolInfo {
	switch agentType {
	case contractx.AgentTypeTalkative:
		return []*schema.ToolInfo{
			{
				Name: ToolFAQAnswer,
				Desc: "Answer a general question about courses, registration, or advising from the FAQ list.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"question": {Type: schema.String, Desc: "The student's question, verbatim", Required: true},
				}),
			},
		}
	case contractx.AgentTypeScheduler:
		termParams := map[string]*schema.ParameterInfo{
			"term": {Type: schema.String, Desc: "Academic term, e.g. Fall. Defaults to the current term"},
			"year": {Type: schema.Integer, Desc: "Academic year, e.g. 2024. Defaults to the current year"},
		}
		return []*schema.ToolInfo{
			{
				Name: ToolCoursesEnrollable,
				Desc: "List the courses the student can enroll in for a term: offered, not yet taken, prerequisites met.",
				ParamsOneOf: schema.NewParamsOneOfByParams(withParams(termParams, map[string]*schema.ParameterInfo{
					"student_id": {Type: schema.String, Desc: "Student id. Defaults to the signed-in student"},
				})),
			},
			{
				Name: ToolCoursesDetails,
				Desc: "Return title, description, credits, and prerequisites for one course.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"course_id": {Type: schema.String, Desc: "Exact course id, e.g. CS218", Required: true},
				}),
			},
			{
				Name:        ToolCoursesOfferings,
				Desc:        "List the course ids offered in a term.",
				ParamsOneOf: schema.NewParamsOneOfByParams(withParams(termParams, nil)),
			},
			{
				Name: ToolScheduleRender,
				Desc: "Save the student's chosen courses as their schedule for a term. Every course must be enrollable.",
				ParamsOneOf: schema.NewParamsOneOfByParams(withParams(termParams, map[string]*schema.ParameterInfo{
					"course_ids": {
						Type:     schema.Array,
						Desc:     "Course ids to schedule",
						ElemInfo: &schema.ParameterInfo{Type: schema.String},
						Required: true,
					},
					"student_id": {Type: schema.String, Desc: "Student id. Defaults to the signed-in student"},
				})),
			},
		}
	default:
		return nil
	}
}

func withParams(base, extra map[string]*schema.ParameterInfo) map[string]*schema.ParameterInfo {
	out := make(map[string]*schema.ParameterInfo, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
