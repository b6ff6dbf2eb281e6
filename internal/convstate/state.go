package convstate

import "strings"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Known intents. Anything outside this set routes to the lead branch.
const (
	IntentGreeting   = "greeting"
	IntentInquiry    = "inquiry"
	IntentHighIntent = "high_intent"
)

// Lead status values. Valid means all three lead fields are present and
// passed the well-formedness check.
const (
	LeadUnknown = "unknown"
	LeadValid   = "valid"
	LeadInvalid = "invalid"
)

// Message is one entry in a conversation transcript. Immutable once appended.
// Tool-call and tool-result messages carry the call id so the generation
// layer can reconstruct provider-native tool blocks from stored history.
type Message struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	ToolCallID string `json:"tool_call_id,omitempty"`
	ToolName   string `json:"tool_name,omitempty"`
}

// LeadData is the incrementally collected lead profile.
type LeadData struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Platform string `json:"platform"`
}

// Complete reports whether every lead field is non-empty.
func (l LeadData) Complete() bool {
	return strings.TrimSpace(l.Name) != "" &&
		strings.TrimSpace(l.Email) != "" &&
		strings.TrimSpace(l.Platform) != ""
}

// State is the full per-conversation dialogue state. One exists per
// conversation id; the engine is its only writer.
type State struct {
	ConversationID string    `json:"conversation_id"`
	Messages       []Message `json:"messages"`
	IntentHistory  []string  `json:"intent_history"`
	Lead           *LeadData `json:"lead,omitempty"`
	LeadStatus     string    `json:"lead_status"`
	UserIsLead     bool      `json:"user_is_lead"`
}

// NewState returns the default state for a conversation that has no history.
func NewState(conversationID string) *State {
	return &State{
		ConversationID: conversationID,
		LeadStatus:     LeadUnknown,
	}
}

// Append adds a message to the transcript. Messages are never rewritten.
func (s *State) Append(msg Message) {
	s.Messages = append(s.Messages, msg)
}

// AppendText adds a plain role/content message.
func (s *State) AppendText(role, content string) {
	s.Append(Message{Role: role, Content: content})
}

// RecordIntent appends a classified intent. Older entries are an audit
// trail; only the latest one drives routing.
func (s *State) RecordIntent(intent string) {
	s.IntentHistory = append(s.IntentHistory, intent)
}

// LastIntent returns the most recent classified intent, or "" if the
// conversation has never been classified. This is the only intent accessor
// routing is allowed to use.
func (s *State) LastIntent() string {
	if len(s.IntentHistory) == 0 {
		return ""
	}
	return s.IntentHistory[len(s.IntentHistory)-1]
}

// Transcript renders the message history as a plain text blob for prompts
// that take the whole conversation as context.
func (s *State) Transcript() string {
	var sb strings.Builder
	for _, msg := range s.Messages {
		if msg.Content == "" {
			continue
		}
		sb.WriteString(msg.Role)
		sb.WriteString(": ")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Clone returns a deep copy. The engine mutates a clone and commits it in
// one Put, so a failed run never leaves partial state behind.
func (s *State) Clone() *State {
	out := &State{
		ConversationID: s.ConversationID,
		LeadStatus:     s.LeadStatus,
		UserIsLead:     s.UserIsLead,
	}
	if len(s.Messages) > 0 {
		out.Messages = make([]Message, len(s.Messages))
		copy(out.Messages, s.Messages)
	}
	if len(s.IntentHistory) > 0 {
		out.IntentHistory = make([]string, len(s.IntentHistory))
		copy(out.IntentHistory, s.IntentHistory)
	}
	if s.Lead != nil {
		lead := *s.Lead
		out.Lead = &lead
	}
	return out
}
