package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/autostream-ai/concierge/internal/anthropic"
	"github.com/autostream-ai/concierge/internal/engine"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// textServer returns a fake Anthropic API that always answers with the
// given text block.
func textServer(t *testing.T, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"content":     []map[string]any{{"type": "text", "text": text}},
			"stop_reason": "end_turn",
		})
	}))
}

func judgeFor(server *httptest.Server) *Judge {
	client := anthropic.NewClient("test-key", "test-model")
	client.SetTestTransport(server.URL)
	return NewJudge(client, discardLogger())
}

func TestClassifyIntent_Success(t *testing.T) {
	server := textServer(t, `{"intent": "inquiry", "user_is_lead": false}`)
	defer server.Close()

	got, err := judgeFor(server).ClassifyIntent(context.Background(), "What's the pricing?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Intent != "inquiry" {
		t.Errorf("expected intent inquiry, got %q", got.Intent)
	}
	if got.UserIsLead {
		t.Error("expected user_is_lead false")
	}
}

func TestClassifyIntent_NotJSON(t *testing.T) {
	server := textServer(t, "the intent is probably a greeting")
	defer server.Close()

	_, err := judgeFor(server).ClassifyIntent(context.Background(), "hi")
	if !errors.Is(err, engine.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}

func TestClassifyIntent_MissingIntent(t *testing.T) {
	server := textServer(t, `{"user_is_lead": true}`)
	defer server.Close()

	_, err := judgeFor(server).ClassifyIntent(context.Background(), "hi")
	if !errors.Is(err, engine.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}

func TestClassifyIntent_UnknownValuePassesThrough(t *testing.T) {
	// Routing policy for off-enum intents belongs to the engine; the judge
	// must hand the raw value through.
	server := textServer(t, `{"intent": "smalltalk", "user_is_lead": false}`)
	defer server.Close()

	got, err := judgeFor(server).ClassifyIntent(context.Background(), "nice weather")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Intent != "smalltalk" {
		t.Errorf("expected raw intent smalltalk, got %q", got.Intent)
	}
}

func TestExtractLead_Success(t *testing.T) {
	server := textServer(t, `{"name": "Ana", "email": "ana@example.com", "platform": "StreamHub"}`)
	defer server.Close()

	got, err := judgeFor(server).ExtractLead(context.Background(), "user: I'm Ana, ana@example.com, StreamHub")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := engine.LeadFields{Name: "Ana", Email: "ana@example.com", Platform: "StreamHub"}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestExtractLead_EmptyFieldsAllowed(t *testing.T) {
	server := textServer(t, `{"name": "Ana", "email": "", "platform": ""}`)
	defer server.Close()

	got, err := judgeFor(server).ExtractLead(context.Background(), "user: I'm Ana")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Ana" || got.Email != "" || got.Platform != "" {
		t.Errorf("unexpected fields: %+v", got)
	}
}

func TestCheckLead(t *testing.T) {
	cases := []struct {
		name    string
		reply   string
		want    bool
		wantErr bool
	}{
		{"valid", `{"all_vals_parsed": "true"}`, true, false},
		{"invalid", `{"all_vals_parsed": "false"}`, false, false},
		{"off schema", `{"all_vals_parsed": "maybe"}`, false, true},
		{"not json", `looks fine to me`, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := textServer(t, tc.reply)
			defer server.Close()

			got, err := judgeFor(server).CheckLead(context.Background(), engine.LeadFields{Name: "Ana", Email: "ana@example.com", Platform: "StreamHub"})
			if tc.wantErr {
				if !errors.Is(err, engine.ErrSchemaViolation) {
					t.Fatalf("expected ErrSchemaViolation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
