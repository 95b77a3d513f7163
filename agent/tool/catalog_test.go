package tool

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	catalogx "github.com/tanpawarit/Chative-Student-Advisor/agent/catalog"
	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
	eligibilityx "github.com/tanpawarit/Chative-Student-Advisor/agent/eligibility"
	faqx "github.com/tanpawarit/Chative-Student-Advisor/agent/faq"
	schedulex "github.com/tanpawarit/Chative-Student-Advisor/agent/schedule"
	studentx "github.com/tanpawarit/Chative-Student-Advisor/agent/student"
)

type fakeSource struct{}

func (fakeSource) LoadCourses(context.Context) ([]catalogx.Course, error) {
	return []catalogx.Course{
		{CourseID: "CS101", Title: "Intro to Programming", Credits: 4},
		{CourseID: "CS102", Title: "Data Structures", Credits: 4, Prerequisites: []string{"CS101"}},
		{CourseID: "MATH131", Title: "Discrete Math", Credits: 3},
	}, nil
}

func (fakeSource) LoadOfferings(context.Context) ([]catalogx.TermOffering, error) {
	return []catalogx.TermOffering{
		{Term: "Fall", Year: 2024, Courses: []string{"CS101", "CS102", "MATH131"}},
	}, nil
}

type panickingFAQ struct{}

func (panickingFAQ) Answer(context.Context, string) (faqx.Answer, error) {
	panic("index corrupted")
}

func newTestToolbox(t *testing.T, faq FAQ) *Toolbox {
	t.Helper()

	store, err := catalogx.NewStore(fakeSource{})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	resolver, err := eligibilityx.NewResolver(store)
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	planner, err := schedulex.NewPlanner(resolver, schedulex.NewMemoryStore())
	if err != nil {
		t.Fatalf("NewPlanner() error = %v", err)
	}
	if faq == nil {
		idx, err := faqx.NewIndex([]faqx.Entry{
			{Question: "How do I contact my advisor?", Answer: "Email advising@example.edu."},
		})
		if err != nil {
			t.Fatalf("NewIndex() error = %v", err)
		}
		svc, err := faqx.NewStaticService(idx)
		if err != nil {
			t.Fatalf("NewStaticService() error = %v", err)
		}
		faq = svc
	}

	box, err := NewToolbox(Services{
		FAQ:         faq,
		Catalog:     store,
		Eligibility: resolver,
		Students: studentx.NewStaticProvider(
			studentx.Student{StudentID: "S001", CoursesTaken: []string{"CS101"}},
			studentx.Student{StudentID: "S002"},
		),
		Schedules: planner,
	})
	if err != nil {
		t.Fatalf("NewToolbox() error = %v", err)
	}
	return box
}

var testContext = contractx.RequestContext{SessionID: "sess", StudentID: "S001", Term: "Fall", Year: 2024}

func TestInfosForAgent(t *testing.T) {
	t.Parallel()

	talkative := InfosForAgent(contractx.AgentTypeTalkative)
	if len(talkative) != 1 || talkative[0].Name != ToolFAQAnswer {
		t.Fatalf("unexpected talkative tools: %v", talkative)
	}

	scheduler := InfosForAgent(contractx.AgentTypeScheduler)
	want := []string{ToolCoursesEnrollable, ToolCoursesDetails, ToolCoursesOfferings, ToolScheduleRender}
	if len(scheduler) != len(want) {
		t.Fatalf("expected %d scheduler tools, got %d", len(want), len(scheduler))
	}
	for i, name := range want {
		if scheduler[i].Name != name {
			t.Fatalf("scheduler tool %d = %s, want %s", i, scheduler[i].Name, name)
		}
	}

	if InfosForAgent(contractx.AgentTypeCoordinator) != nil {
		t.Fatal("coordinator must not own tools")
	}
}

func TestExecutorEnrollableDefaultsFromContext(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(contractx.AgentTypeScheduler, newTestToolbox(t, nil))
	out := exec(context.Background(), testContext, ToolCoursesEnrollable, map[string]any{})
	if !out.OK() {
		t.Fatalf("unexpected error result: %+v", out)
	}
	courses, ok := out.Payload.([]catalogx.Course)
	if !ok {
		t.Fatalf("unexpected payload type %T", out.Payload)
	}
	if len(courses) != 2 || courses[0].CourseID != "CS102" || courses[1].CourseID != "MATH131" {
		t.Fatalf("unexpected courses: %+v", courses)
	}
	if !strings.Contains(out.Message, "CS102, MATH131") {
		t.Fatalf("message %q must list the courses", out.Message)
	}

	out = exec(context.Background(), testContext, ToolCoursesEnrollable, map[string]any{
		"term": "fall", "year": float64(2024), "student_id": "S002",
	})
	if courses := out.Payload.([]catalogx.Course); len(courses) != 2 || courses[0].CourseID != "CS101" {
		t.Fatalf("S002 courses = %+v", courses)
	}
}

func TestExecutorErrorResultsKeepPayloadKey(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(contractx.AgentTypeScheduler, newTestToolbox(t, nil))
	ctx := context.Background()

	tests := []struct {
		name string
		rc   contractx.RequestContext
		tool string
		args map[string]any
		kind contractx.ErrorKind
		key  string
	}{
		{"unknown term", testContext, ToolCoursesEnrollable, map[string]any{"term": "Winter", "year": 2030}, contractx.KindTermNotFound, "courses"},
		{"unknown student", testContext, ToolCoursesEnrollable, map[string]any{"student_id": "S404"}, contractx.KindStudentNotFound, "courses"},
		{"no student", contractx.RequestContext{Term: "Fall", Year: 2024}, ToolCoursesEnrollable, nil, contractx.KindInvalidArgument, "courses"},
		{"bad year", testContext, ToolCoursesOfferings, map[string]any{"year": "soon"}, contractx.KindInvalidArgument, "courses"},
		{"missing course", testContext, ToolCoursesDetails, map[string]any{"course_id": "CS999"}, contractx.KindNotFound, "course"},
		{"blank course", testContext, ToolCoursesDetails, map[string]any{}, contractx.KindInvalidArgument, "course"},
		{"ineligible schedule", testContext, ToolScheduleRender, map[string]any{"course_ids": []any{"CS101"}}, contractx.KindInvalidArgument, "schedule"},
		{"talkative tool", testContext, ToolFAQAnswer, map[string]any{"question": "x"}, contractx.KindInvalidArgument, "answer"},
	}
	for _, tt := range tests {
		out := exec(ctx, tt.rc, tt.tool, tt.args)
		if out.OK() {
			t.Fatalf("%s: expected error result", tt.name)
		}
		if out.Kind != tt.kind {
			t.Fatalf("%s: kind = %s, want %s (%s)", tt.name, out.Kind, tt.kind, out.Message)
		}
		wire, err := json.Marshal(out)
		if err != nil {
			t.Fatalf("%s: marshal: %v", tt.name, err)
		}
		var decoded map[string]any
		if err := json.Unmarshal(wire, &decoded); err != nil {
			t.Fatalf("%s: unmarshal: %v", tt.name, err)
		}
		if decoded["status"] != "error" {
			t.Fatalf("%s: status = %v", tt.name, decoded["status"])
		}
		if _, ok := decoded[tt.key]; !ok {
			t.Fatalf("%s: payload key %q missing from %s", tt.name, tt.key, wire)
		}
	}
}

func TestExecutorRenderSchedule(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(contractx.AgentTypeScheduler, newTestToolbox(t, nil))
	out := exec(context.Background(), testContext, ToolScheduleRender, map[string]any{
		"course_ids": []any{"MATH131", "CS102"},
	})
	if !out.OK() {
		t.Fatalf("unexpected error result: %+v", out)
	}
	s, ok := out.Payload.(schedulex.Schedule)
	if !ok {
		t.Fatalf("unexpected payload type %T", out.Payload)
	}
	if got := strings.Join(s.CourseIDs(), ","); got != "CS102,MATH131" {
		t.Fatalf("scheduled courses = %s", got)
	}
	if out.Message != schedulex.ConfirmationMessage {
		t.Fatalf("message = %q", out.Message)
	}
}

func TestExecutorFAQ(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(contractx.AgentTypeTalkative, newTestToolbox(t, nil))

	out := exec(context.Background(), testContext, ToolFAQAnswer, map[string]any{"question": "how do i contact my advisor?"})
	if !out.OK() || out.Payload != "Email advising@example.edu." {
		t.Fatalf("unexpected result: %+v", out)
	}

	out = exec(context.Background(), testContext, ToolFAQAnswer, map[string]any{"question": "qwerty zxcvb"})
	if out.OK() || out.Kind != contractx.KindNoMatch {
		t.Fatalf("unexpected result: %+v", out)
	}
	if out.Message != faqx.FallbackMessage {
		t.Fatalf("message = %q, want fallback", out.Message)
	}

	out = exec(context.Background(), testContext, ToolFAQAnswer, map[string]any{"question": 42})
	if out.OK() || out.Kind != contractx.KindInvalidArgument {
		t.Fatalf("non-string question result: %+v", out)
	}
}

func TestExecutorRecoversPanics(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(contractx.AgentTypeTalkative, newTestToolbox(t, panickingFAQ{}))
	out := exec(context.Background(), testContext, ToolFAQAnswer, map[string]any{"question": "anything"})
	if out.OK() {
		t.Fatal("expected error result")
	}
	if out.Kind != contractx.KindDataUnavailable {
		t.Fatalf("kind = %s, want data_unavailable", out.Kind)
	}
}

func TestGatewayRecordsMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	gw, err := NewGateway(newTestToolbox(t, nil), WithMetrics(metrics))
	if err != nil {
		t.Fatalf("NewGateway() error = %v", err)
	}

	results, err := gw.Execute(context.Background(), contractx.AgentTypeScheduler, testContext, []contractx.ToolRequest{
		{Tool: ToolCoursesOfferings},
		{Tool: ToolCoursesDetails, Args: map[string]any{"course_id": "CS102"}},
		{Tool: ToolCoursesDetails, Args: map[string]any{"course_id": "nope"}},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if ids := results[0].Payload.([]string); strings.Join(ids, ",") != "CS101,CS102,MATH131" {
		t.Fatalf("offerings = %v", ids)
	}

	if got := testutil.ToFloat64(metrics.Calls.WithLabelValues(ToolCoursesDetails, "success")); got != 1 {
		t.Fatalf("details success count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.Calls.WithLabelValues(ToolCoursesDetails, "error")); got != 1 {
		t.Fatalf("details error count = %v, want 1", got)
	}
}

func TestGatewayBoundsToolLabel(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	gw, err := NewGateway(newTestToolbox(t, nil), WithMetrics(metrics))
	if err != nil {
		t.Fatalf("NewGateway() error = %v", err)
	}

	results, err := gw.Execute(context.Background(), contractx.AgentTypeScheduler, testContext, []contractx.ToolRequest{
		{Tool: "courses.teleport"},
		{Tool: "drop_table_students"},
		{Tool: ToolFAQAnswer, Args: map[string]any{"question": "how do I add a course?"}},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, res := range results {
		if res.OK() {
			t.Fatalf("expected every call to fail for the scheduler: %#v", res)
		}
	}

	if got := testutil.ToFloat64(metrics.Calls.WithLabelValues(unknownToolLabel, "error")); got != 2 {
		t.Fatalf("unknown tool count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.Calls.WithLabelValues(ToolFAQAnswer, "error")); got != 1 {
		t.Fatalf("faq count = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(metrics.Calls); got != 2 {
		t.Fatalf("call series = %d, want 2", got)
	}
}

func TestGatewayStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	gw, err := NewGateway(newTestToolbox(t, nil))
	if err != nil {
		t.Fatalf("NewGateway() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = gw.Execute(ctx, contractx.AgentTypeScheduler, testContext, []contractx.ToolRequest{{Tool: ToolCoursesOfferings}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Execute() error = %v, want context.Canceled", err)
	}
}
