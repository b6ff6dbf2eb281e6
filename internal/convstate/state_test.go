package convstate

import (
	"strings"
	"testing"
)

func TestNewState_Defaults(t *testing.T) {
	st := NewState("c1")

	if st.ConversationID != "c1" {
		t.Errorf("expected conversation id c1, got %q", st.ConversationID)
	}
	if len(st.Messages) != 0 {
		t.Errorf("expected empty messages, got %d", len(st.Messages))
	}
	if len(st.IntentHistory) != 0 {
		t.Errorf("expected empty intent history, got %v", st.IntentHistory)
	}
	if st.Lead != nil {
		t.Errorf("expected nil lead, got %+v", st.Lead)
	}
	if st.LeadStatus != LeadUnknown {
		t.Errorf("expected lead status unknown, got %q", st.LeadStatus)
	}
	if st.UserIsLead {
		t.Error("expected user_is_lead false")
	}
}

func TestLastIntent(t *testing.T) {
	st := NewState("c1")

	if st.LastIntent() != "" {
		t.Errorf("expected empty intent before classification, got %q", st.LastIntent())
	}

	st.RecordIntent(IntentGreeting)
	st.RecordIntent(IntentInquiry)
	st.RecordIntent(IntentHighIntent)

	if st.LastIntent() != IntentHighIntent {
		t.Errorf("only the latest intent is authoritative, got %q", st.LastIntent())
	}
	if len(st.IntentHistory) != 3 {
		t.Errorf("older intents are kept as audit trail, got %v", st.IntentHistory)
	}
}

func TestTranscript_SkipsEmptyContent(t *testing.T) {
	st := NewState("c1")
	st.AppendText(RoleUser, "Hi")
	st.Append(Message{Role: RoleAssistant, Content: "", ToolCallID: "tu_1", ToolName: "search_knowledge"})
	st.AppendText(RoleAssistant, "Hello!")

	transcript := st.Transcript()
	if !strings.Contains(transcript, "user: Hi") || !strings.Contains(transcript, "assistant: Hello!") {
		t.Errorf("transcript missing expected lines: %q", transcript)
	}
	if strings.Contains(transcript, "tu_1") {
		t.Errorf("transcript should skip empty-content tool calls: %q", transcript)
	}
}

func TestClone_Independence(t *testing.T) {
	st := NewState("c1")
	st.AppendText(RoleUser, "Hi")
	st.RecordIntent(IntentGreeting)
	st.Lead = &LeadData{Name: "Ana"}

	clone := st.Clone()
	clone.AppendText(RoleAssistant, "Hello!")
	clone.RecordIntent(IntentInquiry)
	clone.Lead.Name = "Bob"
	clone.UserIsLead = true

	if len(st.Messages) != 1 {
		t.Errorf("mutating clone changed original messages: %d", len(st.Messages))
	}
	if len(st.IntentHistory) != 1 {
		t.Errorf("mutating clone changed original intents: %v", st.IntentHistory)
	}
	if st.Lead.Name != "Ana" {
		t.Errorf("mutating clone changed original lead: %q", st.Lead.Name)
	}
	if st.UserIsLead {
		t.Error("mutating clone changed original flag")
	}
}

func TestLeadData_Complete(t *testing.T) {
	cases := []struct {
		name string
		lead LeadData
		want bool
	}{
		{"all present", LeadData{Name: "Ana", Email: "ana@example.com", Platform: "StreamHub"}, true},
		{"missing email", LeadData{Name: "Ana", Platform: "StreamHub"}, false},
		{"whitespace name", LeadData{Name: "  ", Email: "ana@example.com", Platform: "StreamHub"}, false},
		{"empty", LeadData{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.lead.Complete(); got != tc.want {
				t.Errorf("Complete() = %v, want %v", got, tc.want)
			}
		})
	}
}
