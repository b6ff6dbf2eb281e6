// Package engine implements the dialogue orchestration state machine: every
// user turn is classified, then routed to a greeting reply, a
// knowledge-grounded answer, or the lead-collection path. State is read
// from and committed back to the store once per turn.
package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/autostream-ai/concierge/internal/convstate"
)

// maxSearchRounds caps the inquiry tool loop. The model is expected to
// answer after one retrieval; a model that keeps asking for the tool gets
// cut off with searchExhaustedMessage instead of looping forever.
const maxSearchRounds = 3

const (
	// leadCapturedMessage is the fixed confirmation appended after a valid
	// lead is captured.
	leadCapturedMessage = "🎉 Your details have been captured! Our team will reach out shortly."
	// searchExhaustedMessage is appended when the tool loop hits its cap
	// without the model producing an answer.
	searchExhaustedMessage = "I couldn't retrieve an answer from the knowledge base just now. Could you rephrase your question?"
)

// Engine runs one deterministic state-machine pass per user turn. Calls for
// the same conversation id are serialized; different ids proceed
// concurrently.
type Engine struct {
	judge     Judge
	generator Generator
	retriever Retriever
	store     StateStore
	leads     LeadSink
	logger    *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(judge Judge, generator Generator, retriever Retriever, store StateStore, leads LeadSink, logger *slog.Logger) *Engine {
	return &Engine{
		judge:     judge,
		generator: generator,
		retriever: retriever,
		store:     store,
		leads:     leads,
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
	}
}

// Process consumes one user message for a conversation and returns the
// messages produced during this turn plus the committed state. The run
// mutates a working copy and commits it in a single Put; any error leaves
// the previously committed state authoritative.
func (e *Engine) Process(ctx context.Context, conversationID, message string) ([]convstate.Message, *convstate.State, error) {
	if strings.TrimSpace(message) == "" {
		return nil, nil, ErrEmptyMessage
	}

	unlock := e.lockConversation(conversationID)
	defer unlock()

	committed, err := e.store.Get(ctx, conversationID)
	if err != nil {
		return nil, nil, storeErr("get", err)
	}

	work := committed.Clone()
	before := len(work.Messages)

	if err := e.run(ctx, work, message); err != nil {
		return nil, nil, err
	}

	if err := e.store.Put(ctx, work); err != nil {
		return nil, nil, storeErr("put", err)
	}

	produced := work.Messages[before:]
	return produced, work, nil
}

// run executes the state machine on the working state: ClassifyIntent, then
// one of the Greeting / Inquiry / HandleLead branches.
func (e *Engine) run(ctx context.Context, work *convstate.State, message string) error {
	work.AppendText(convstate.RoleUser, message)

	judgment, err := e.judge.ClassifyIntent(ctx, message)
	if err != nil {
		return upstreamErr("classify intent", err)
	}
	work.RecordIntent(judgment.Intent)

	e.logger.Info("intent classified",
		"conversation_id", work.ConversationID,
		"intent", judgment.Intent,
		"turn", len(work.IntentHistory),
	)

	switch work.LastIntent() {
	case convstate.IntentGreeting:
		return e.greet(ctx, work)
	case convstate.IntentInquiry:
		return e.inquire(ctx, work)
	case convstate.IntentHighIntent:
		return e.handleLead(ctx, work)
	default:
		// Unrecognized intents fall through to the lead branch rather than
		// dropping the turn.
		e.logger.Warn("unrecognized intent, routing to lead branch",
			"conversation_id", work.ConversationID,
			"intent", work.LastIntent(),
		)
		return e.handleLead(ctx, work)
	}
}

func (e *Engine) greet(ctx context.Context, work *convstate.State) error {
	reply, err := e.generator.Reply(ctx, work.Messages)
	if err != nil {
		return upstreamErr("greeting", err)
	}
	work.AppendText(convstate.RoleAssistant, reply)
	return nil
}

// inquire answers a product question, letting the model pull snippets from
// the knowledge base. Each retrieval round appends the tool call and its
// result to the transcript and re-invokes the model over the augmented
// history.
func (e *Engine) inquire(ctx context.Context, work *convstate.State) error {
	rounds := 0
	for {
		gen, err := e.generator.ReplyWithSearch(ctx, work.Messages)
		if err != nil {
			return upstreamErr("inquiry", err)
		}

		if gen.ToolCall == nil {
			work.AppendText(convstate.RoleAssistant, gen.Text)
			return nil
		}

		if rounds >= maxSearchRounds {
			e.logger.Warn("search round cap reached",
				"conversation_id", work.ConversationID,
				"rounds", rounds,
			)
			work.AppendText(convstate.RoleAssistant, searchExhaustedMessage)
			return nil
		}
		rounds++

		result, err := e.retriever.Search(ctx, gen.ToolCall.Query)
		if err != nil {
			return retrievalErr(err)
		}

		args, _ := json.Marshal(map[string]string{"query": gen.ToolCall.Query})
		work.Append(convstate.Message{
			Role:       convstate.RoleAssistant,
			Content:    string(args),
			ToolCallID: gen.ToolCall.ID,
			ToolName:   gen.ToolCall.Name,
		})

		payload, err := json.Marshal(result)
		if err != nil {
			return retrievalErr(err)
		}
		work.Append(convstate.Message{
			Role:       convstate.RoleTool,
			Content:    string(payload),
			ToolCallID: gen.ToolCall.ID,
			ToolName:   gen.ToolCall.Name,
		})

		e.logger.Info("knowledge retrieved",
			"conversation_id", work.ConversationID,
			"query", gen.ToolCall.Query,
			"snippets", len(result.Snippets),
			"round", rounds,
		)
	}
}

// handleLead asks for the next missing lead field, then re-evaluates the
// lead from the full transcript. A valid lead is captured and confirmed;
// an invalid one ends the turn with the ask as the reply.
func (e *Engine) handleLead(ctx context.Context, work *convstate.State) error {
	ask, err := e.generator.RequestMissingLead(ctx, work.Transcript())
	if err != nil {
		return upstreamErr("handle lead", err)
	}
	work.AppendText(convstate.RoleAssistant, ask)
	work.UserIsLead = true

	return e.parseLead(ctx, work)
}

func (e *Engine) parseLead(ctx context.Context, work *convstate.State) error {
	fields, err := e.judge.ExtractLead(ctx, work.Transcript())
	if err != nil {
		return upstreamErr("extract lead", err)
	}
	lead := convstate.LeadData{
		Name:     fields.Name,
		Email:    fields.Email,
		Platform: fields.Platform,
	}
	work.Lead = &lead

	wellFormed, err := e.judge.CheckLead(ctx, fields)
	if err != nil {
		return upstreamErr("check lead", err)
	}

	// The validity judgment alone doesn't make a lead valid: all three
	// fields must actually be present.
	if wellFormed && lead.Complete() {
		work.LeadStatus = convstate.LeadValid
		return e.captureLead(ctx, work, lead)
	}
	work.LeadStatus = convstate.LeadInvalid
	return nil
}

func (e *Engine) captureLead(ctx context.Context, work *convstate.State, lead convstate.LeadData) error {
	if e.leads != nil {
		if err := e.leads.Capture(ctx, work.ConversationID, lead); err != nil {
			// Fire-and-forget: losing the event doesn't fail the turn.
			e.logger.Error("lead capture publish failed",
				"conversation_id", work.ConversationID,
				"error", err,
			)
		}
	}
	e.logger.Info("lead captured",
		"conversation_id", work.ConversationID,
		"name", lead.Name,
		"email", lead.Email,
		"platform", lead.Platform,
	)
	work.AppendText(convstate.RoleAssistant, leadCapturedMessage)
	return nil
}

// lockConversation serializes Process calls per conversation id.
func (e *Engine) lockConversation(conversationID string) func() {
	e.mu.Lock()
	l, ok := e.locks[conversationID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[conversationID] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}
