package trader

import (
	"context"
	"fmt"

	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/pkg/llm"
)

const systemPrompt = "You are an advanced crypto trading AI. Always respond with valid JSON arrays only."

// Strategy proposes candidate actions from the current state. Swapping the
// implementation (model-backed, rule-based) leaves validation and execution
// untouched.
type Strategy interface {
	Propose(ctx context.Context, view *StateView) ([]Candidate, error)
}

// ChatClient is the completion surface the proposer consumes.
type ChatClient interface {
	Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)
}

// LLMProposer renders the decision prompt and asks a chat model for actions.
type LLMProposer struct {
	client      ChatClient
	tmpl        *llm.PromptTemplate
	model       string
	temperature float64
	maxTokens   int
}

// ProposerOption customises the proposer.
type ProposerOption func(*LLMProposer)

// WithModel overrides the model taken from the client configuration.
func WithModel(model string) ProposerOption {
	return func(p *LLMProposer) {
		if model != "" {
			p.model = model
		}
	}
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) ProposerOption {
	return func(p *LLMProposer) { p.temperature = t }
}

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int) ProposerOption {
	return func(p *LLMProposer) {
		if n > 0 {
			p.maxTokens = n
		}
	}
}

// NewLLMProposer constructs a proposer over a chat client and a parsed
// prompt template.
func NewLLMProposer(client ChatClient, tmpl *llm.PromptTemplate, opts ...ProposerOption) *LLMProposer {
	p := &LLMProposer{
		client:      client,
		tmpl:        tmpl,
		temperature: 0.7,
		maxTokens:   2500,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BuildPrompt renders the decision prompt for the supplied state.
func (p *LLMProposer) BuildPrompt(view *StateView) (string, error) {
	data, err := view.templateData()
	if err != nil {
		return "", fmt.Errorf("trader: assemble prompt data: %w", err)
	}
	prompt, err := p.tmpl.Render(data)
	if err != nil {
		return "", fmt.Errorf("trader: render prompt: %w", err)
	}
	return prompt, nil
}

// Propose renders the prompt, requests a completion and parses the result.
// An empty or unparseable completion is an empty candidate list, not an
// error; transport failures are errors.
func (p *LLMProposer) Propose(ctx context.Context, view *StateView) ([]Candidate, error) {
	prompt, err := p.BuildPrompt(view)
	if err != nil {
		return nil, err
	}

	temperature := p.temperature
	maxTokens := p.maxTokens
	resp, err := p.client.Chat(ctx, &llm.ChatRequest{
		Model: p.model,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("trader: completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, nil
	}
	return ParseActions(resp.Choices[0].Message.Content), nil
}

// PromptDigest exposes the template content hash for journaling.
func (p *LLMProposer) PromptDigest() string {
	return p.tmpl.Digest()
}
