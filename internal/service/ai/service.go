// Package ai acquires assistant replies for user utterances. It short-circuits
// a fixed identity greeting, infers the response language mode, and walks an
// ordered list of Gemini models until one produces a response.
package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/ranjankr/ranjanchat/backend/internal/config"
)

// selfTestPrompt is the tiny probe used to verify connectivity.
const selfTestPrompt = "Hello, are you working?"

// Candidate pairs a model identifier with its bound chat model. Candidates
// are tried in slice order, most to least capable.
type Candidate struct {
	Name  string
	Model model.BaseChatModel
}

// Service orchestrates response acquisition across the candidate models.
type Service struct {
	candidates []Candidate
}

// NewService binds one chat model per configured identifier. Identifiers that
// fail to bind are skipped with a warning; at least one must succeed.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	client, err := cfg.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	var candidates []Candidate
	for _, name := range cfg.Models {
		chatModel, err := cfg.NewChatModel(ctx, client, name)
		if err != nil {
			log.Printf("[ai] skipping model %s: %v", name, err)
			continue
		}
		candidates = append(candidates, Candidate{Name: name, Model: chatModel})
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("no usable models among %v", cfg.Models)
	}

	return &Service{candidates: candidates}, nil
}

// NewWithCandidates wires an explicit candidate list.
func NewWithCandidates(candidates []Candidate) *Service {
	return &Service{candidates: candidates}
}

// ChatResponse produces the reply for one user utterance. Model failures are
// absorbed here: when every candidate fails, the return value is a
// user-facing message classified from the last error, never an error value.
//
// state carries the session's sticky Hinglish preference and may be updated
// as a side effect of an explicit language request in the utterance.
func (s *Service) ChatResponse(ctx context.Context, utterance string, forceHinglish bool, state *LanguageState) string {
	// Hard short-circuit, evaluated before any model or language logic.
	if isLakdiwaliIntroduction(utterance) {
		return lakdiwaliGreeting
	}

	if state != nil && requestsHinglish(utterance) {
		state.MarkRequested()
	}

	sticky := state != nil && state.Preferred()
	hinglish := forceHinglish || sticky || isHinglishMessage(utterance)

	prompt := buildPrompt(utterance, hinglish)

	content, err := s.generate(ctx, prompt)
	if err != nil {
		log.Printf("[ai] all models failed: %v", err)
		details := err.Error()
		return failureMessage(classifyFailure(details), details)
	}
	return content
}

// SelfTest probes the candidate order with a minimal prompt and reports the
// first working model identifier.
func (s *Service) SelfTest(ctx context.Context) (string, error) {
	input := []*schema.Message{schema.UserMessage(selfTestPrompt)}

	var lastErr error
	for _, cand := range s.candidates {
		if _, err := cand.Model.Generate(ctx, input); err != nil {
			lastErr = err
			continue
		}
		return cand.Name, nil
	}
	return "", fmt.Errorf("no working model: %w", lastErr)
}

// generate attempts each candidate in order, stopping at the first success.
// A failure on one candidate advances the loop; only exhausting them all
// propagates the last error.
func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	input := []*schema.Message{schema.UserMessage(prompt)}

	var lastErr error
	for _, cand := range s.candidates {
		resp, err := cand.Model.Generate(ctx, input)
		if err != nil {
			lastErr = err
			continue
		}
		log.Printf("[ai] generated response via model=%s length=%d", cand.Name, len(resp.Content))
		return resp.Content, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no models configured")
	}
	return "", lastErr
}
