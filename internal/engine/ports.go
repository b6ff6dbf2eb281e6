package engine

import (
	"context"

	"github.com/autostream-ai/concierge/internal/convstate"
)

// IntentJudgment is the structured result of classifying one user message.
type IntentJudgment struct {
	Intent     string `json:"intent"`
	UserIsLead bool   `json:"user_is_lead"`
}

// LeadFields is the extracted lead triple. Fields may be empty or
// placeholder when the conversation hasn't supplied them yet.
type LeadFields struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Platform string `json:"platform"`
}

// Judge produces schema-constrained judgments from an LLM. Implementations
// wrap any malformed model output in ErrSchemaViolation.
type Judge interface {
	ClassifyIntent(ctx context.Context, message string) (IntentJudgment, error)
	ExtractLead(ctx context.Context, transcript string) (LeadFields, error)
	CheckLead(ctx context.Context, lead LeadFields) (bool, error)
}

// ToolCall is a model-requested knowledge lookup.
type ToolCall struct {
	ID    string
	Name  string
	Query string
}

// Generation is one free-form model turn: either assistant text or a
// request to run the retrieval tool.
type Generation struct {
	Text     string
	ToolCall *ToolCall
}

// Generator produces free-form assistant text.
type Generator interface {
	// Reply generates an assistant message from the full history under the
	// fixed system instruction.
	Reply(ctx context.Context, history []convstate.Message) (string, error)
	// ReplyWithSearch is Reply with the knowledge retrieval tool offered to
	// the model.
	ReplyWithSearch(ctx context.Context, history []convstate.Message) (Generation, error)
	// RequestMissingLead asks the user for whichever lead field the
	// transcript is still missing, one question at a time.
	RequestMissingLead(ctx context.Context, transcript string) (string, error)
}

// SearchResult is the retrieval tool's output for one query.
type SearchResult struct {
	Query    string   `json:"query"`
	Snippets []string `json:"snippets"`
}

// Retriever answers queries against the knowledge corpus.
type Retriever interface {
	Search(ctx context.Context, query string) (SearchResult, error)
}

// StateStore persists conversation state keyed by conversation id. Get on
// an unknown id returns a fresh default state, never an error.
type StateStore interface {
	Get(ctx context.Context, conversationID string) (*convstate.State, error)
	Put(ctx context.Context, st *convstate.State) error
}

// LeadSink receives completed leads. Delivery is fire-and-forget.
type LeadSink interface {
	Capture(ctx context.Context, conversationID string, lead convstate.LeadData) error
}
