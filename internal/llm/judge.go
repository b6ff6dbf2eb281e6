// Package llm implements the engine's judgment and generation ports on top
// of the Anthropic Messages API.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/autostream-ai/concierge/internal/anthropic"
	"github.com/autostream-ai/concierge/internal/engine"
)

// Judge produces the schema-constrained judgments the engine routes on.
type Judge struct {
	llm    *anthropic.Client
	logger *slog.Logger
}

func NewJudge(llm *anthropic.Client, logger *slog.Logger) *Judge {
	return &Judge{llm: llm, logger: logger}
}

// ClassifyIntent classifies one user message into the intent enum. The raw
// intent value is returned even when it is outside the enum; routing policy
// for that case belongs to the engine.
func (j *Judge) ClassifyIntent(ctx context.Context, message string) (engine.IntentJudgment, error) {
	prompt := fmt.Sprintf(classifyIntentPrompt, message)

	raw, err := j.llm.Complete(ctx, "", []anthropic.Message{anthropic.Text("user", prompt)}, 256)
	if err != nil {
		return engine.IntentJudgment{}, fmt.Errorf("llm classify: %w", err)
	}

	var out engine.IntentJudgment
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &out); err != nil {
		j.logger.Error("failed to parse intent judgment", "error", err, "raw", raw)
		return engine.IntentJudgment{}, fmt.Errorf("%w: intent: %v", engine.ErrSchemaViolation, err)
	}
	if out.Intent == "" {
		return engine.IntentJudgment{}, fmt.Errorf("%w: intent: missing intent field", engine.ErrSchemaViolation)
	}
	return out, nil
}

// ExtractLead pulls the lead triple out of the full transcript. Missing
// values come back as empty strings per the prompt contract.
func (j *Judge) ExtractLead(ctx context.Context, transcript string) (engine.LeadFields, error) {
	prompt := fmt.Sprintf(parseLeadPrompt, transcript)

	raw, err := j.llm.Complete(ctx, "", []anthropic.Message{anthropic.Text("user", prompt)}, 512)
	if err != nil {
		return engine.LeadFields{}, fmt.Errorf("llm parse lead: %w", err)
	}

	var out engine.LeadFields
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &out); err != nil {
		j.logger.Error("failed to parse lead extraction", "error", err, "raw", raw)
		return engine.LeadFields{}, fmt.Errorf("%w: lead fields: %v", engine.ErrSchemaViolation, err)
	}
	return out, nil
}

type leadCheckResponse struct {
	AllValsParsed string `json:"all_vals_parsed"`
}

// CheckLead judges whether the extracted triple is well-formed.
func (j *Judge) CheckLead(ctx context.Context, lead engine.LeadFields) (bool, error) {
	prompt := fmt.Sprintf(checkLeadPrompt, lead.Name, lead.Email, lead.Platform)

	raw, err := j.llm.Complete(ctx, "", []anthropic.Message{anthropic.Text("user", prompt)}, 64)
	if err != nil {
		return false, fmt.Errorf("llm check lead: %w", err)
	}

	var out leadCheckResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &out); err != nil {
		j.logger.Error("failed to parse lead check", "error", err, "raw", raw)
		return false, fmt.Errorf("%w: lead check: %v", engine.ErrSchemaViolation, err)
	}
	switch out.AllValsParsed {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("%w: lead check: unexpected value %q", engine.ErrSchemaViolation, out.AllValsParsed)
	}
}
