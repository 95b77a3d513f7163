package specialist

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
	promptx "github.com/tanpawarit/Chative-Student-Advisor/agent/prompt"
	toolx "github.com/tanpawarit/Chative-Student-Advisor/agent/tool"
)

type fakeToolCallingModel struct {
	mu        sync.Mutex
	responses []*schema.Message
	err       error
	idx       int
	inputs    [][]*schema.Message
	tools     []*schema.ToolInfo
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeToolCallingModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeToolCallingModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tools = tools
	return f, nil
}

func (f *fakeToolCallingModel) lastUserInput() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.inputs) == 0 {
		return ""
	}
	msgs := f.inputs[len(f.inputs)-1]
	return msgs[len(msgs)-1].Content
}

func TestPlannerRoutesToScheduler(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Content: "```json\n{\"agent\":\" Scheduler \",\"reason\":\"wants courses\"}\n```"},
		},
	}

	planner, err := newPlanner(context.Background(), fake, "router prompt {\"agent\": ...}")
	if err != nil {
		t.Fatalf("newPlanner() error = %v", err)
	}

	out, err := planner.Plan(context.Background(), contractx.PlannerRequest{
		UserMessage: "what can I take next fall?",
		Context:     contractx.RequestContext{SessionID: "s1", StudentID: "S001", Term: "fall", Year: 2024},
	})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if out.Agent != contractx.AgentTypeScheduler {
		t.Fatalf("unexpected agent: %s", out.Agent)
	}
	if out.Reason != "wants courses" {
		t.Fatalf("unexpected reason: %q", out.Reason)
	}

	input := fake.lastUserInput()
	for _, want := range []string{`"student_id":"S001"`, `"term":"fall"`, `"year":2024`} {
		if !strings.Contains(input, want) {
			t.Fatalf("planner input %s missing %s", input, want)
		}
	}
}

func TestPlannerRejectsUnknownAgent(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Content: `{"agent":"sales"}`},
		},
	}

	planner, err := newPlanner(context.Background(), fake, "router prompt")
	if err != nil {
		t.Fatalf("newPlanner() error = %v", err)
	}

	_, err = planner.Plan(context.Background(), contractx.PlannerRequest{UserMessage: "hi"})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}

func TestPlannerModelFailure(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{err: errors.New("upstream 503")}
	planner, err := newPlanner(context.Background(), fake, "router prompt")
	if err != nil {
		t.Fatalf("newPlanner() error = %v", err)
	}

	_, err = planner.Plan(context.Background(), contractx.PlannerRequest{UserMessage: "hi"})
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}
}

func TestSpecialistBindsAgentTools(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{}
	if _, err := newSpecialist(context.Background(), contractx.AgentTypeScheduler, fake, "scheduler prompt"); err != nil {
		t.Fatalf("newSpecialist() error = %v", err)
	}

	got := map[string]bool{}
	for _, info := range fake.tools {
		got[info.Name] = true
	}
	for _, name := range []string{toolx.ToolCoursesEnrollable, toolx.ToolCoursesDetails, toolx.ToolCoursesOfferings, toolx.ToolScheduleRender} {
		if !got[name] {
			t.Fatalf("scheduler tool %s not bound; got %v", name, got)
		}
	}
	if got[toolx.ToolFAQAnswer] {
		t.Fatal("scheduler must not be offered the faq tool")
	}
}

func TestSpecialistToolCallMapping(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{
				Role: schema.Assistant,
				ToolCalls: []schema.ToolCall{
					{
						ID: "call_1",
						Function: schema.FunctionCall{
							Name:      toolx.ToolCoursesEnrollable,
							Arguments: `{"term":"fall","year":2024}`,
						},
					},
				},
			},
		},
	}

	spec, err := newSpecialist(context.Background(), contractx.AgentTypeScheduler, fake, "scheduler prompt")
	if err != nil {
		t.Fatalf("newSpecialist() error = %v", err)
	}

	resp, err := spec.Run(context.Background(), contractx.SpecialistRequest{
		UserMessage: "what can I enroll in?",
		Context:     contractx.RequestContext{StudentID: "S001"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(resp.ToolRequests) != 1 {
		t.Fatalf("expected 1 tool request, got %d", len(resp.ToolRequests))
	}
	if resp.ToolRequests[0].Tool != toolx.ToolCoursesEnrollable {
		t.Fatalf("unexpected tool: %s", resp.ToolRequests[0].Tool)
	}
	if resp.ToolRequests[0].Args["term"] != "fall" {
		t.Fatalf("unexpected args: %#v", resp.ToolRequests[0].Args)
	}
	if !strings.Contains(fake.lastUserInput(), `"mode":"act"`) {
		t.Fatalf("expected act mode payload, got %s", fake.lastUserInput())
	}
}

func TestSpecialistRejectsToolOutsideAllowlist(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{
				Role: schema.Assistant,
				ToolCalls: []schema.ToolCall{
					{Function: schema.FunctionCall{Name: toolx.ToolScheduleRender, Arguments: `{}`}},
				},
			},
		},
	}

	spec, err := newSpecialist(context.Background(), contractx.AgentTypeTalkative, fake, "talkative prompt")
	if err != nil {
		t.Fatalf("newSpecialist() error = %v", err)
	}

	_, err = spec.Run(context.Background(), contractx.SpecialistRequest{UserMessage: "build my schedule"})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}

func TestSpecialistInvalidToolArgs(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{
				Role: schema.Assistant,
				ToolCalls: []schema.ToolCall{
					{Function: schema.FunctionCall{Name: toolx.ToolFAQAnswer, Arguments: `{"question":`}},
				},
			},
		},
	}

	spec, err := newSpecialist(context.Background(), contractx.AgentTypeTalkative, fake, "talkative prompt")
	if err != nil {
		t.Fatalf("newSpecialist() error = %v", err)
	}

	_, err = spec.Run(context.Background(), contractx.SpecialistRequest{UserMessage: "how do I add a course?"})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}

func TestSpecialistDirectReplyInActMode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
		want    string
	}{
		{name: "json", content: `{"message":"Hello! How can I help?"}`, want: "Hello! How can I help?"},
		{name: "fenced json", content: "```json\n{\"message\":\"Hi there\"}\n```", want: "Hi there"},
		{name: "plain text", content: "  Good morning.  ", want: "Good morning."},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fake := &fakeToolCallingModel{
				responses: []*schema.Message{{Role: schema.Assistant, Content: tc.content}},
			}
			spec, err := newSpecialist(context.Background(), contractx.AgentTypeTalkative, fake, "talkative prompt")
			if err != nil {
				t.Fatalf("newSpecialist() error = %v", err)
			}

			resp, err := spec.Run(context.Background(), contractx.SpecialistRequest{UserMessage: "hello"})
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if resp.Message != tc.want {
				t.Fatalf("message = %q, want %q", resp.Message, tc.want)
			}
		})
	}
}

func TestSpecialistRespondModeIncludesToolResults(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Content: `{"message":"You can add a course from the portal."}`},
		},
	}

	spec, err := newSpecialist(context.Background(), contractx.AgentTypeTalkative, fake, "talkative prompt")
	if err != nil {
		t.Fatalf("newSpecialist() error = %v", err)
	}

	resp, err := spec.Run(context.Background(), contractx.SpecialistRequest{
		UserMessage: "how do I add a course?",
		Respond:     true,
		ToolResults: []contractx.ToolResult{
			contractx.Succeeded(toolx.ToolFAQAnswer, "answer", "Use the portal.", ""),
		},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if resp.Message != "You can add a course from the portal." {
		t.Fatalf("unexpected message: %q", resp.Message)
	}

	input := fake.lastUserInput()
	for _, want := range []string{`"mode":"respond"`, `"tool":"faq.answer"`, `"answer":"Use the portal."`} {
		if !strings.Contains(input, want) {
			t.Fatalf("respond payload %s missing %s", input, want)
		}
	}
}

func TestSpecialistRespondModeEmptyMessage(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{{Content: `{"message":"   "}`}},
	}
	spec, err := newSpecialist(context.Background(), contractx.AgentTypeTalkative, fake, "talkative prompt")
	if err != nil {
		t.Fatalf("newSpecialist() error = %v", err)
	}

	_, err = spec.Run(context.Background(), contractx.SpecialistRequest{UserMessage: "hi", Respond: true})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}

func TestSpecialistRequiresUserMessage(t *testing.T) {
	t.Parallel()

	spec, err := newSpecialist(context.Background(), contractx.AgentTypeTalkative, &fakeToolCallingModel{}, "talkative prompt")
	if err != nil {
		t.Fatalf("newSpecialist() error = %v", err)
	}

	_, err = spec.Run(context.Background(), contractx.SpecialistRequest{UserMessage: "  "})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestNewRegistryWiresAgents(t *testing.T) {
	t.Parallel()

	reg, err := newRegistry(context.Background(), promptx.LoadPromptSet(),
		&fakeToolCallingModel{}, &fakeToolCallingModel{}, &fakeToolCallingModel{})
	if err != nil {
		t.Fatalf("newRegistry() error = %v", err)
	}
	if reg.Planner() == nil || reg.Talkative() == nil || reg.Scheduler() == nil {
		t.Fatal("registry returned a nil agent")
	}
}
