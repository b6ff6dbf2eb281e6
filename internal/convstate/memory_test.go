package convstate

import (
	"context"
	"testing"
)

func TestMemoryStore_GetMissingYieldsFreshState(t *testing.T) {
	store := NewMemoryStore()

	st, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.ConversationID != "nope" {
		t.Errorf("expected conversation id nope, got %q", st.ConversationID)
	}
	if st.LeadStatus != LeadUnknown {
		t.Errorf("expected lead status unknown, got %q", st.LeadStatus)
	}
}

func TestMemoryStore_PutGetRoundtrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	st := NewState("c1")
	st.AppendText(RoleUser, "Hi")
	st.RecordIntent(IntentGreeting)
	st.UserIsLead = true
	if err := store.Put(ctx, st); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "Hi" {
		t.Errorf("unexpected messages: %+v", got.Messages)
	}
	if got.LastIntent() != IntentGreeting {
		t.Errorf("unexpected intent: %q", got.LastIntent())
	}
	if !got.UserIsLead {
		t.Error("user_is_lead not persisted")
	}
}

func TestMemoryStore_IsolatesStoredState(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	st := NewState("c1")
	st.AppendText(RoleUser, "Hi")
	if err := store.Put(ctx, st); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Mutating what we put in and what we got out must not touch the store.
	st.AppendText(RoleUser, "again")
	got, _ := store.Get(ctx, "c1")
	got.AppendText(RoleUser, "and again")

	fresh, _ := store.Get(ctx, "c1")
	if len(fresh.Messages) != 1 {
		t.Errorf("stored state was mutated through a reference: %d messages", len(fresh.Messages))
	}
}
