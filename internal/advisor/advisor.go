// Package advisor orchestrates the analysis pipeline: it gathers weather and
// NDVI inputs, queries the LLM for an agronomic recommendation, and falls
// back to the demo plan when the model is unavailable or unparseable.
package advisor

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/agrisight/agrisight/internal/model"
	"github.com/agrisight/agrisight/internal/resilience"
	"github.com/agrisight/agrisight/pkg/anthropic"
)

// DemoMessage accompanies recommendations served from the canned plan.
const DemoMessage = "Using demo data. Add your Anthropic API key to enable AI analysis."

const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 2000
)

// Advisor produces recommendations from farm inputs.
type Advisor struct {
	llm       anthropic.Client
	model     string
	maxTokens int64
	retry     resilience.RetryConfig
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithModel overrides the model identifier sent to the API.
func WithModel(m string) Option {
	return func(a *Advisor) {
		if m != "" {
			a.model = m
		}
	}
}

// WithMaxTokens overrides the response token cap.
func WithMaxTokens(n int64) Option {
	return func(a *Advisor) {
		if n > 0 {
			a.maxTokens = n
		}
	}
}

// WithRetryConfig overrides the retry policy applied to API calls.
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(a *Advisor) { a.retry = cfg }
}

// New builds an Advisor. A nil llm client is allowed and forces demo mode.
func New(llm anthropic.Client, opts ...Option) *Advisor {
	a := &Advisor{
		llm:       llm,
		model:     defaultModel,
		maxTokens: defaultMaxTokens,
		retry:     resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Result is the outcome of an analysis: the recommendation plus whether it
// came from the canned demo plan.
type Result struct {
	Recommendation *model.Recommendation
	Demo           bool
	Message        string
}

// Analyze asks the LLM for a recommendation built from the knowledge base,
// weather summary and NDVI summary. Any failure degrades to the demo plan
// rather than surfacing an error to the caller.
func (a *Advisor) Analyze(ctx context.Context, knowledgeBase, weatherSummary, ndviSummary string) *Result {
	if a.llm == nil {
		zap.L().Info("advisor: no LLM client configured, using demo recommendation")
		return demoResult()
	}

	prompt := BuildPrompt(knowledgeBase, weatherSummary, ndviSummary)

	resp, err := resilience.DoVal(ctx, a.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return a.llm.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     a.model,
			MaxTokens: a.maxTokens,
			System:    systemPrompt,
			Messages: []anthropic.Message{
				{Role: "user", Content: prompt},
			},
		})
	})
	if err != nil {
		zap.L().Warn("advisor: LLM request failed, using demo recommendation", zap.Error(err))
		return demoResult()
	}

	rec, err := extractRecommendation(resp.Text())
	if err != nil {
		zap.L().Warn("advisor: could not parse LLM reply, using demo recommendation", zap.Error(err))
		return demoResult()
	}
	zap.L().Info("advisor: recommendation generated",
		zap.Int64("input_tokens", resp.Usage.InputTokens),
		zap.Int64("output_tokens", resp.Usage.OutputTokens))
	return &Result{Recommendation: rec}
}

func demoResult() *Result {
	return &Result{
		Recommendation: model.DemoRecommendation(),
		Demo:           true,
		Message:        DemoMessage,
	}
}

// extractRecommendation pulls the first JSON object out of the model's reply
// and decodes it. Replies wrapped in markdown fences are unwrapped first.
func extractRecommendation(reply string) (*model.Recommendation, error) {
	raw := cleanJSON(reply)
	if raw == "" {
		return nil, eris.New("advisor: no JSON object in reply")
	}
	var rec model.Recommendation
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, eris.Wrap(err, "advisor: decode recommendation")
	}
	if rec.Watering == nil && len(rec.Fertilization) == 0 && rec.Predictions == nil {
		return nil, eris.New("advisor: reply JSON has no recommendation sections")
	}
	rec.Raw = reply
	return &rec, nil
}

// cleanJSON strips markdown code fences and returns the substring from the
// first '{' to the last '}', or "" when no object is present.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}
