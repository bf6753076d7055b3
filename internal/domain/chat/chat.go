// Package chat answers questions about the business through a language
// model that may call a fixed set of read-only tools.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"c2ms/internal/platform/metrics"
)

const DefaultMaxToolRounds = 3

var ErrEmptyMessage = errors.New("message is required")

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one entry of the conversation shown to the user.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type ToolCall struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type ToolResult struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// Turn is what the model sees: plain text, the calls it asked for, or the
// results handed back for those calls.
type Turn struct {
	Role    string
	Text    string
	Calls   []ToolCall
	Results []ToolResult
}

// Output is a single model response. Calls is empty for a final answer.
type Output struct {
	Text  string
	Calls []ToolCall
}

type Param struct {
	Name        string
	Type        string
	Description string
	Enum        []string
	Required    bool
}

type ToolSpec struct {
	Name        string
	Description string
	Params      []Param
}

// Model is a hosted language model with function calling.
type Model interface {
	Generate(ctx context.Context, system string, turns []Turn, tools []ToolSpec) (Output, error)
}

type Tool struct {
	Spec ToolSpec
	Run  func(ctx context.Context, args map[string]any) (any, error)
}

type Answer struct {
	Text      string   `json:"text"`
	ToolsUsed []string `json:"toolsUsed"`
}

type Bridge struct {
	model     Model
	tools     map[string]Tool
	specs     []ToolSpec
	system    string
	maxRounds int
	metrics   *metrics.Collector
}

func NewBridge(model Model, system string, maxRounds int, collector *metrics.Collector, tools ...Tool) *Bridge {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxToolRounds
	}
	b := &Bridge{
		model:     model,
		tools:     map[string]Tool{},
		system:    system,
		maxRounds: maxRounds,
		metrics:   collector,
	}
	for _, t := range tools {
		b.tools[t.Spec.Name] = t
		b.specs = append(b.specs, t.Spec)
	}
	return b
}

// Reply sends the history and the new message to the model and runs any
// tools it asks for. Tool failures are handed back to the model as
// {"error": ...} and never retried. After maxRounds of tool calls the model
// is asked once more without tools so it has to answer in text.
func (b *Bridge) Reply(ctx context.Context, history []Message, message string) (Answer, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Answer{}, ErrEmptyMessage
	}
	turns := make([]Turn, 0, len(history)+1)
	for _, m := range history {
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		role := RoleUser
		if m.Role == RoleModel || m.Role == "assistant" {
			role = RoleModel
		}
		turns = append(turns, Turn{Role: role, Text: m.Text})
	}
	turns = append(turns, Turn{Role: RoleUser, Text: message})

	answer := Answer{ToolsUsed: []string{}}
	for round := 0; ; round++ {
		specs := b.specs
		if round >= b.maxRounds {
			specs = nil
		}
		out, err := b.model.Generate(ctx, b.system, turns, specs)
		if err != nil {
			return Answer{}, fmt.Errorf("generate reply: %w", err)
		}
		if len(out.Calls) == 0 || specs == nil {
			answer.Text = strings.TrimSpace(out.Text)
			return answer, nil
		}

		results := make([]ToolResult, 0, len(out.Calls))
		for _, call := range out.Calls {
			results = append(results, ToolResult{ID: call.ID, Name: call.Name, Response: b.run(ctx, call)})
			answer.ToolsUsed = append(answer.ToolsUsed, call.Name)
		}
		turns = append(turns,
			Turn{Role: RoleModel, Text: out.Text, Calls: out.Calls},
			Turn{Role: RoleUser, Results: results},
		)
	}
}

func (b *Bridge) run(ctx context.Context, call ToolCall) map[string]any {
	if b.metrics != nil {
		b.metrics.ChatToolCall()
	}
	tool, ok := b.tools[call.Name]
	if !ok {
		return map[string]any{"error": fmt.Sprintf("unknown tool %q", call.Name)}
	}
	args := call.Args
	if args == nil {
		args = map[string]any{}
	}
	value, err := tool.Run(ctx, args)
	if err != nil {
		slog.Warn("chat tool failed", "tool", call.Name, "err", err)
		return map[string]any{"error": err.Error()}
	}
	response, err := toResponse(value)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return response
}

// toResponse converts a tool result into the JSON object shape function
// responses require. Non-object values are wrapped under "result".
func toResponse(value any) (map[string]any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode tool result: %w", err)
	}
	if obj, ok := decoded.(map[string]any); ok {
		return obj, nil
	}
	return map[string]any{"result": decoded}, nil
}
