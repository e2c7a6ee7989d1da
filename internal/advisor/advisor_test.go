package advisor

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisight/agrisight/internal/resilience"
	"github.com/agrisight/agrisight/pkg/anthropic"
)

type fakeLLM struct {
	reply string
	err   error
	calls int
	req   anthropic.MessageRequest
}

func (f *fakeLLM) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.calls++
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: f.reply}},
		Usage:   anthropic.TokenUsage{InputTokens: 10, OutputTokens: 20},
	}, nil
}

func noRetry() resilience.RetryConfig {
	return resilience.RetryConfig{MaxAttempts: 1}
}

func TestAnalyzeNilClientUsesDemo(t *testing.T) {
	t.Parallel()

	a := New(nil)
	res := a.Analyze(context.Background(), "kb", "weather", "ndvi")

	require.NotNil(t, res.Recommendation)
	assert.True(t, res.Demo)
	assert.Equal(t, DemoMessage, res.Message)
	assert.NotEmpty(t, res.Recommendation.Fertilization)
}

func TestAnalyzeParsesStructuredReply(t *testing.T) {
	t.Parallel()

	llm := &fakeLLM{reply: "Here is my plan:\n```json\n" + `{
		"watering": {"schedule": "weekly", "description": "rainfed"},
		"fertilization": [{"type": "Urea", "schedule": "50 kg/ha at planting"}],
		"predictions": {"yieldEstimate": "2.8 tons/ha"}
	}` + "\n```"}

	a := New(llm, WithModel("test-model"), WithRetryConfig(noRetry()))
	res := a.Analyze(context.Background(), "kb text", "weather text", "ndvi text")

	require.False(t, res.Demo)
	require.NotNil(t, res.Recommendation.Watering)
	assert.Equal(t, "weekly", res.Recommendation.Watering.Schedule)
	require.Len(t, res.Recommendation.Fertilization, 1)
	assert.Equal(t, "Urea", res.Recommendation.Fertilization[0].Type)
	assert.Equal(t, "2.8 tons/ha", res.Recommendation.Predictions.YieldEstimate)
	assert.NotEmpty(t, res.Recommendation.Raw)

	assert.Equal(t, "test-model", llm.req.Model)
	assert.Contains(t, llm.req.Messages[0].Content, "kb text")
	assert.Contains(t, llm.req.Messages[0].Content, "weather text")
	assert.Contains(t, llm.req.Messages[0].Content, "ndvi text")
}

func TestAnalyzeErrorFallsBackToDemo(t *testing.T) {
	t.Parallel()

	llm := &fakeLLM{err: eris.New("api down")}
	a := New(llm, WithRetryConfig(noRetry()))

	res := a.Analyze(context.Background(), "", "", "")

	assert.True(t, res.Demo)
	assert.Equal(t, 1, llm.calls)
	require.NotNil(t, res.Recommendation.Watering)
}

func TestAnalyzeUnparseableReplyFallsBackToDemo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		reply string
	}{
		{name: "no json", reply: "I cannot answer that."},
		{name: "invalid json", reply: `{"watering": `},
		{name: "empty object", reply: `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := New(&fakeLLM{reply: tt.reply}, WithRetryConfig(noRetry()))
			res := a.Analyze(context.Background(), "", "", "")
			assert.True(t, res.Demo)
		})
	}
}

func TestCleanJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare object", in: `{"a":1}`, want: `{"a":1}`},
		{name: "fenced", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "prose around object", in: `Sure! {"a":1} Hope that helps.`, want: `{"a":1}`},
		{name: "no object", in: "nothing here", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cleanJSON(tt.in))
		})
	}
}

func TestSummarizeNDVI(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "NDVI data integration pending", SummarizeNDVI(nil))

	got := SummarizeNDVI(map[string]float64{"average": 0.61})
	assert.Equal(t, `{"average":0.61}`, got)

	long := make([]int, 400)
	assert.Len(t, SummarizeNDVI(long), maxNDVISummaryBytes)
}
