package specialist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
	toolx "github.com/tanpawarit/Chative-Student-Advisor/agent/tool"
)

type specialistImpl struct {
	agentType        contractx.AgentType
	structuredRunner compose.Runnable[map[string]any, specialistLLMOutput]
	toolRunner       compose.Runnable[map[string]any, *schema.Message]
	runtimeRunner    compose.Runnable[contractx.SpecialistRequest, contractx.SpecialistResponse]
	allowedTools     map[string]struct{}
}

type specialistLLMOutput struct {
	Message string `json:"message"`
}

func newSpecialist(
	ctx context.Context,
	agentType contractx.AgentType,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
) (*specialistImpl, error) {
	structuredRunner, err := compileSpecialistStructuredGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile structured specialist graph: %v", contractx.ErrModelInvoke, err)
	}

	tools := toolx.InfosForAgent(agentType)
	toolModel, err := chatModel.WithTools(tools)
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools for specialist=%s: %v", contractx.ErrModelInvoke, agentType, err)
	}
	toolRunner, err := compileSpecialistToolPlanningGraph(ctx, toolModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile tool planner graph: %v", contractx.ErrModelInvoke, err)
	}

	allowedTools := make(map[string]struct{}, len(tools))
	for _, t := range tools {
		if t == nil || strings.TrimSpace(t.Name) == "" {
			continue
		}
		allowedTools[t.Name] = struct{}{}
	}

	spec := &specialistImpl{
		agentType:        agentType,
		structuredRunner: structuredRunner,
		toolRunner:       toolRunner,
		allowedTools:     allowedTools,
	}

	runtimeRunner, err := compileSpecialistRuntimeGraph(ctx, spec.runToolPlanning, spec.runStructured)
	if err != nil {
		return nil, fmt.Errorf("%w: compile specialist runtime graph: %v", contractx.ErrModelInvoke, err)
	}
	spec.runtimeRunner = runtimeRunner

	return spec, nil
}

func (s *specialistImpl) Run(ctx context.Context, req contractx.SpecialistRequest) (contractx.SpecialistResponse, error) {
	out, err := s.runtimeRunner.Invoke(ctx, req)
	if err != nil {
		return contractx.SpecialistResponse{}, err
	}
	return out, nil
}

// runStructured produces the final reply; tools are not offered.
func (s *specialistImpl) runStructured(ctx context.Context, req contractx.SpecialistRequest) (contractx.SpecialistResponse, error) {
	input, err := s.payload("respond", req)
	if err != nil {
		return contractx.SpecialistResponse{}, err
	}

	out, err := s.structuredRunner.Invoke(ctx, map[string]any{
		"input": input,
	})
	if err != nil {
		return contractx.SpecialistResponse{}, fmt.Errorf("%w: specialist invoke: %v", contractx.ErrModelInvoke, err)
	}

	message := strings.TrimSpace(out.Message)
	if message == "" {
		return contractx.SpecialistResponse{}, fmt.Errorf("%w: specialist message is empty", contractx.ErrSchemaViolation)
	}
	return contractx.SpecialistResponse{Message: message}, nil
}

// runToolPlanning lets the model either call tools or answer directly.
func (s *specialistImpl) runToolPlanning(ctx context.Context, req contractx.SpecialistRequest) (contractx.SpecialistResponse, error) {
	input, err := s.payload("act", req)
	if err != nil {
		return contractx.SpecialistResponse{}, err
	}

	msg, err := s.toolRunner.Invoke(ctx, map[string]any{
		"input": input,
	})
	if err != nil {
		return contractx.SpecialistResponse{}, fmt.Errorf("%w: tool planning invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return contractx.SpecialistResponse{}, fmt.Errorf("%w: empty tool planning response", contractx.ErrSchemaViolation)
	}

	toolRequests, err := toToolRequests(msg.ToolCalls)
	if err != nil {
		return contractx.SpecialistResponse{}, err
	}

	if len(toolRequests) == 0 {
		message := directReply(msg.Content)
		if message == "" {
			return contractx.SpecialistResponse{}, fmt.Errorf("%w: act mode returned neither tool calls nor a reply", contractx.ErrSchemaViolation)
		}
		return contractx.SpecialistResponse{Message: message}, nil
	}

	for _, tr := range toolRequests {
		if _, ok := s.allowedTools[tr.Tool]; !ok {
			return contractx.SpecialistResponse{}, fmt.Errorf("%w: tool=%s is not allowed for agent=%s", contractx.ErrSchemaViolation, tr.Tool, s.agentType)
		}
	}

	return contractx.SpecialistResponse{
		ToolRequests: toolRequests,
	}, nil
}

func (s *specialistImpl) payload(mode string, req contractx.SpecialistRequest) (string, error) {
	payload := map[string]any{
		"mode":         mode,
		"user_message": req.UserMessage,
		"context":      summarizeContext(req.Context),
	}
	if len(req.ToolResults) > 0 {
		results := make([]map[string]any, 0, len(req.ToolResults))
		for _, r := range req.ToolResults {
			m := r.Map()
			m["tool"] = r.Tool
			results = append(results, m)
		}
		payload["tool_results"] = results
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal specialist payload: %v", contractx.ErrValidation, err)
	}
	return string(input), nil
}

// directReply accepts either the {"message": ...} reply format or plain text.
func directReply(content string) string {
	trimmed := trimFences(content)
	if strings.HasPrefix(trimmed, "{") {
		var out specialistLLMOutput
		if err := json.Unmarshal([]byte(trimmed), &out); err == nil && strings.TrimSpace(out.Message) != "" {
			return strings.TrimSpace(out.Message)
		}
	}
	return strings.TrimSpace(content)
}

func toToolRequests(calls []schema.ToolCall) ([]contractx.ToolRequest, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	reqs := make([]contractx.ToolRequest, 0, len(calls))
	for _, call := range calls {
		tool := strings.TrimSpace(call.Function.Name)
		if tool == "" {
			return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}

		args := map[string]any{}
		rawArgs := strings.TrimSpace(call.Function.Arguments)
		if rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return nil, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, tool, err)
			}
		}

		reqs = append(reqs, contractx.ToolRequest{
			Tool: tool,
			Args: args,
		})
	}
	return reqs, nil
}
