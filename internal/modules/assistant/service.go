package assistant

import (
	"context"
	"errors"
	"strings"

	"github.com/rollcall/core/internal/config"
	"gorm.io/gorm"
)

// maxAgentSteps caps the tool loop so a confused model cannot spin
// against the database forever.
const maxAgentSteps = 50

var (
	ErrDisabled  = errors.New("assistant is disabled")
	ErrStepLimit = errors.New("assistant hit the step limit without answering")
)

// ToolCallRecord is one tool invocation in the transcript returned to the
// admin, so they can audit what the model actually ran.
type ToolCallRecord struct {
	Name   string `json:"name"`
	Result string `json:"result"`
}

// ChatResult is the outcome of one assistant conversation turn.
type ChatResult struct {
	Reply     string           `json:"reply"`
	Steps     int              `json:"steps"`
	ToolCalls []ToolCallRecord `json:"tool_calls,omitempty"`
}

type agent interface {
	Chat(ctx context.Context, message string) (*ChatResult, error)
}

type Service struct {
	cfg    *config.AppConfig
	runner *toolRunner
}

func NewService(db *gorm.DB, cfg *config.AppConfig) *Service {
	return &Service{cfg: cfg, runner: &toolRunner{db: db}}
}

// Chat answers one admin question, letting the model call guarded database
// tools until it has what it needs.
func (s *Service) Chat(ctx context.Context, message string) (*ChatResult, error) {
	a, err := s.buildAgent()
	if err != nil {
		return nil, err
	}
	return a.Chat(ctx, strings.TrimSpace(message))
}

func (s *Service) buildAgent() (agent, error) {
	cfg := s.cfg.Assistant
	if !cfg.Enable {
		return nil, ErrDisabled
	}
	if cfg.APIKey == "" {
		return nil, errors.New("assistant api key is empty")
	}

	if isAnthropicProviderType(cfg.Provider) {
		return newAnthropicAgent(cfg.APIKey, cfg.Endpoint, cfg.Model, s.runner), nil
	}
	return newOpenAIAgent(cfg.APIKey, cfg.Endpoint, cfg.Model, s.runner), nil
}

func isAnthropicProviderType(raw string) bool {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = strings.ReplaceAll(t, "_", "-")
	t = strings.ReplaceAll(t, " ", "")
	return t == "anthropic"
}
