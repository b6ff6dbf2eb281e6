package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/autostream-ai/concierge/internal/anthropic"
	"github.com/autostream-ai/concierge/internal/convstate"
	"github.com/autostream-ai/concierge/internal/engine"
)

// searchToolName is the single tool offered during the inquiry branch.
const searchToolName = "search_knowledge"

var searchTool = anthropic.Tool{
	Name:        searchToolName,
	Description: "Retrieve relevant information from the AutoStream knowledge base. Use this whenever the user asks about the product, features, pricing, or policies.",
	InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query",
			},
		},
		"required": []string{"query"},
	},
}

// Generator produces free-form assistant replies under the fixed AutoStream
// system instruction.
type Generator struct {
	llm    *anthropic.Client
	logger *slog.Logger
}

func NewGenerator(llm *anthropic.Client, logger *slog.Logger) *Generator {
	return &Generator{llm: llm, logger: logger}
}

func (g *Generator) Reply(ctx context.Context, history []convstate.Message) (string, error) {
	text, err := g.llm.Complete(ctx, systemPrompt, toAnthropic(history), 1024)
	if err != nil {
		return "", fmt.Errorf("llm reply: %w", err)
	}
	return text, nil
}

type searchArguments struct {
	Query string `json:"query"`
}

func (g *Generator) ReplyWithSearch(ctx context.Context, history []convstate.Message) (engine.Generation, error) {
	comp, err := g.llm.CompleteWithTools(ctx, systemPrompt, toAnthropic(history), []anthropic.Tool{searchTool}, 1024)
	if err != nil {
		return engine.Generation{}, fmt.Errorf("llm reply with search: %w", err)
	}

	if comp.ToolCall == nil {
		return engine.Generation{Text: comp.Text}, nil
	}

	var args searchArguments
	if err := json.Unmarshal(comp.ToolCall.Arguments, &args); err != nil {
		g.logger.Error("failed to parse tool arguments", "error", err, "arguments", string(comp.ToolCall.Arguments))
		return engine.Generation{}, fmt.Errorf("%w: search arguments: %v", engine.ErrSchemaViolation, err)
	}
	return engine.Generation{
		Text: comp.Text,
		ToolCall: &engine.ToolCall{
			ID:    comp.ToolCall.ID,
			Name:  comp.ToolCall.Name,
			Query: args.Query,
		},
	}, nil
}

func (g *Generator) RequestMissingLead(ctx context.Context, transcript string) (string, error) {
	prompt := fmt.Sprintf(requestLeadPrompt, transcript)
	text, err := g.llm.Complete(ctx, systemPrompt, []anthropic.Message{anthropic.Text("user", prompt)}, 512)
	if err != nil {
		return "", fmt.Errorf("llm request lead: %w", err)
	}
	return text, nil
}

// toAnthropic maps stored transcript messages onto Messages API blocks.
// Assistant tool calls become tool_use blocks and tool results become
// user-role tool_result blocks, so a re-invoked model sees the native shape
// of its own prior turn.
func toAnthropic(history []convstate.Message) []anthropic.Message {
	out := make([]anthropic.Message, 0, len(history))
	for _, msg := range history {
		switch {
		case msg.Role == convstate.RoleTool:
			out = append(out, anthropic.ToolResult(msg.ToolCallID, msg.Content))
		case msg.Role == convstate.RoleAssistant && msg.ToolCallID != "":
			out = append(out, anthropic.ToolUse(msg.ToolCallID, msg.ToolName, json.RawMessage(msg.Content)))
		default:
			out = append(out, anthropic.Text(msg.Role, msg.Content))
		}
	}
	return out
}
