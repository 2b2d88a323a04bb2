package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/pmorel/db-agent/internal/tools"
	"github.com/pmorel/db-agent/internal/version"
)

// Gateway implements Service on top of the hosted assistants API via the
// OpenAI SDK. The project endpoint is configurable, so any compatible hosted
// deployment works.
type Gateway struct {
	client       openai.Client
	toolset      *tools.ToolManager
	pollInterval time.Duration
	runTimeout   time.Duration
}

var _ Service = (*Gateway)(nil)

// NewGateway dials the hosted agent service at endpoint. pollInterval and
// runTimeout bound the RunAndWait polling loop.
func NewGateway(endpoint, apiKey string, toolset *tools.ToolManager, pollInterval, runTimeout time.Duration) *Gateway {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithBaseURL(endpoint))
	}
	return &Gateway{
		client:       openai.NewClient(opts...),
		toolset:      toolset,
		pollInterval: pollInterval,
		runTimeout:   runTimeout,
	}
}

// EnsureAgent provisions the described agent. The hosted name carries a
// suffix derived from the instructions, tool names and component versions, so
// an unchanged definition finds its existing hosted agent while any change
// provisions a fresh one.
func (g *Gateway) EnsureAgent(ctx context.Context, def Definition) (Agent, error) {
	defs := def.Toolset.GetDefinitions()
	toolNames := make([]string, len(defs))
	for i, d := range defs {
		toolNames[i] = d.Function.Name
	}
	hostedName := fmt.Sprintf("%s-%s", def.Name, version.AgentSuffix(def.Instructions, toolNames))

	page, err := g.client.Beta.Assistants.List(ctx, openai.BetaAssistantListParams{})
	if err != nil {
		return Agent{}, fmt.Errorf("list agents: %w", err)
	}
	for _, a := range page.Data {
		if a.Name == hostedName {
			return toAgent(a), nil
		}
	}

	created, err := g.client.Beta.Assistants.New(ctx, openai.BetaAssistantNewParams{
		Model:        shared.ChatModel(def.Model),
		Name:         openai.String(hostedName),
		Instructions: openai.String(def.Instructions),
		Tools:        toToolParams(defs),
	})
	if err != nil {
		return Agent{}, fmt.Errorf("create agent: %w", err)
	}
	return toAgent(*created), nil
}

func (g *Gateway) OpenThread(ctx context.Context) (string, error) {
	thread, err := g.client.Beta.Threads.New(ctx, openai.BetaThreadNewParams{})
	if err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	return thread.ID, nil
}

func (g *Gateway) Submit(ctx context.Context, threadID, role, text string) error {
	_, err := g.client.Beta.Threads.Messages.New(ctx, threadID, openai.BetaThreadMessageNewParams{
		Role: openai.BetaThreadMessageNewParamsRole(role),
		Content: openai.BetaThreadMessageNewParamsContentUnion{
			OfString: openai.String(text),
		},
	})
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// RunAndWait drives one hosted run to a terminal state. The loop polls the
// run status at the configured interval; while the run requires action it
// executes the requested tool calls through the bound ToolManager and
// submits the outputs back. The whole wait is bounded by the configured run
// timeout on top of the caller's context.
func (g *Gateway) RunAndWait(ctx context.Context, threadID, agentID string) (RunResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.runTimeout)
	defer cancel()

	run, err := g.client.Beta.Threads.Runs.New(ctx, threadID, openai.BetaThreadRunNewParams{
		AssistantID: agentID,
	})
	if err != nil {
		return RunResult{}, fmt.Errorf("create run: %w", err)
	}

	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()

	for {
		switch string(run.Status) {
		case "completed":
			return RunResult{Status: RunCompleted}, nil
		case "failed":
			return RunResult{Status: RunFailed, ErrorMessage: run.LastError.Message}, nil
		case "cancelled", "expired", "incomplete":
			return RunResult{Status: RunOther, ErrorMessage: string(run.Status)}, nil
		case "requires_action":
			if err := g.submitToolOutputs(ctx, run); err != nil {
				return RunResult{}, err
			}
		}

		select {
		case <-ctx.Done():
			return RunResult{}, fmt.Errorf("run %s did not reach a terminal state: %w", run.ID, ctx.Err())
		case <-ticker.C:
		}

		run, err = g.client.Beta.Threads.Runs.Get(ctx, threadID, run.ID)
		if err != nil {
			return RunResult{}, fmt.Errorf("poll run: %w", err)
		}
	}
}

// submitToolOutputs services the tool calls a run is blocked on. Tool
// execution never fails from the hosted service's point of view: failures
// travel back as error payloads inside the output.
func (g *Gateway) submitToolOutputs(ctx context.Context, run *openai.Run) error {
	calls := run.RequiredAction.SubmitToolOutputs.ToolCalls

	localCalls := make([]tools.ToolCall, len(calls))
	for i, call := range calls {
		localCalls[i] = tools.ToolCall{
			ID:   call.ID,
			Type: tools.ToolTypeFunction,
			Function: tools.ToolCallFunction{
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			},
		}
	}

	outputs := ExecuteToolCalls(ctx, g.toolset, localCalls)
	params := make([]openai.BetaThreadRunSubmitToolOutputsParamsToolOutput, len(outputs))
	for i, out := range outputs {
		params[i] = openai.BetaThreadRunSubmitToolOutputsParamsToolOutput{
			ToolCallID: openai.String(out.ToolCallID),
			Output:     openai.String(out.Output),
		}
	}

	_, err := g.client.Beta.Threads.Runs.SubmitToolOutputs(ctx, run.ThreadID, run.ID,
		openai.BetaThreadRunSubmitToolOutputsParams{ToolOutputs: params})
	if err != nil {
		return fmt.Errorf("submit tool outputs: %w", err)
	}
	return nil
}

func (g *Gateway) LatestReply(ctx context.Context, threadID string) (string, error) {
	messages, err := g.ListMessages(ctx, threadID)
	if err != nil {
		return "", err
	}
	text, ok := LatestByRole(messages, "assistant")
	if !ok {
		return "", ErrNoReply
	}
	return text, nil
}

func (g *Gateway) ListMessages(ctx context.Context, threadID string) ([]ThreadMessage, error) {
	page, err := g.client.Beta.Threads.Messages.List(ctx, threadID, openai.BetaThreadMessageListParams{
		Order: openai.BetaThreadMessageListParamsOrderAsc,
	})
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	messages := make([]ThreadMessage, 0, len(page.Data))
	for _, msg := range page.Data {
		messages = append(messages, ThreadMessage{
			ID:        msg.ID,
			Role:      string(msg.Role),
			Text:      messageText(msg),
			CreatedAt: time.Unix(msg.CreatedAt, 0),
		})
	}
	return messages, nil
}

func (g *Gateway) ListAgents(ctx context.Context) ([]Agent, error) {
	page, err := g.client.Beta.Assistants.List(ctx, openai.BetaAssistantListParams{})
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	agents := make([]Agent, 0, len(page.Data))
	for _, a := range page.Data {
		agents = append(agents, toAgent(a))
	}
	return agents, nil
}

func (g *Gateway) GetAgent(ctx context.Context, id string) (Agent, error) {
	a, err := g.client.Beta.Assistants.Get(ctx, id)
	if err != nil {
		return Agent{}, fmt.Errorf("get agent: %w", err)
	}
	return toAgent(*a), nil
}

func (g *Gateway) UpdateAgent(ctx context.Context, id, name, instructions string) error {
	params := openai.BetaAssistantUpdateParams{}
	if name != "" {
		params.Name = openai.String(name)
	}
	if instructions != "" {
		params.Instructions = openai.String(instructions)
	}
	if _, err := g.client.Beta.Assistants.Update(ctx, id, params); err != nil {
		return fmt.Errorf("update agent: %w", err)
	}
	return nil
}

func (g *Gateway) DeleteAgent(ctx context.Context, id string) error {
	if _, err := g.client.Beta.Assistants.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete agent: %w", err)
	}
	return nil
}

func (g *Gateway) DeleteThread(ctx context.Context, threadID string) error {
	if _, err := g.client.Beta.Threads.Delete(ctx, threadID); err != nil {
		return fmt.Errorf("delete thread: %w", err)
	}
	return nil
}

func toAgent(a openai.Assistant) Agent {
	return Agent{
		ID:           a.ID,
		Name:         a.Name,
		Model:        a.Model,
		Instructions: a.Instructions,
		CreatedAt:    time.Unix(a.CreatedAt, 0),
	}
}

// messageText extracts the text of the last text block of a message,
// matching how the front ends display one text per message.
func messageText(msg openai.Message) string {
	text := ""
	for _, block := range msg.Content {
		if block.Text.Value != "" {
			text = block.Text.Value
		}
	}
	return text
}

// toToolParams translates the local tool definitions into the hosted
// service's function-tool format.
func toToolParams(defs []tools.Tool) []openai.AssistantToolUnionParam {
	params := make([]openai.AssistantToolUnionParam, len(defs))
	for i, def := range defs {
		params[i] = openai.AssistantToolUnionParam{
			OfFunction: &openai.FunctionToolParam{
				Function: shared.FunctionDefinitionParam{
					Name:        def.Function.Name,
					Description: openai.String(def.Function.Description),
					Parameters:  toFunctionParameters(def.Function.Parameters),
				},
			},
		}
	}
	return params
}

// toFunctionParameters converts the typed JSONSchema into the loose map the
// SDK expects on the wire.
func toFunctionParameters(schema tools.JSONSchema) shared.FunctionParameters {
	data, err := json.Marshal(schema)
	if err != nil {
		return shared.FunctionParameters{}
	}
	var params shared.FunctionParameters
	if err := json.Unmarshal(data, &params); err != nil {
		return shared.FunctionParameters{}
	}
	return params
}
