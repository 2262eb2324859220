package gateway_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spurchat/classify"
	"spurchat/config"
	"spurchat/gateway"
	"spurchat/model"
	"spurchat/provider"
	"spurchat/provider/testutil"
)

const (
	flashModel    = "gemini-2.0-flash"
	fallbackModel = "gemini-flash-latest"
)

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
}

func (s *sleepRecorder) all() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

func status(code int) error {
	return &provider.StatusError{Provider: "mock", StatusCode: code, Message: "upstream"}
}

func newGateway(t *testing.T, mock *testutil.MockProvider, opts ...gateway.Option) (*gateway.Gateway, *sleepRecorder) {
	t.Helper()
	rec := &sleepRecorder{}
	base := []gateway.Option{
		gateway.WithModels(flashModel, fallbackModel),
		gateway.WithSleeper(rec.sleep),
	}
	return gateway.New(provider.StaticHandle(mock), append(base, opts...)...), rec
}

func TestGenerateReply_Success(t *testing.T) {
	mock := testutil.NewMockProvider(flashModel).Script(map[string][]testutil.Response{
		flashModel: {{Text: "  We ship in 5-7 days.  \n"}},
	})
	g, rec := newGateway(t, mock, gateway.WithMaxTokens(321))

	reply, err := g.GenerateReply(context.Background(), testutil.TestHistory("c1"), "How long is shipping?")
	require.NoError(t, err)
	assert.Equal(t, "We ship in 5-7 days.", reply)
	assert.Empty(t, rec.all())

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, flashModel, reqs[0].Model)
	assert.Equal(t, 321, reqs[0].MaxOutputTokens)
	assert.Equal(t, gateway.BuildPrompt(testutil.TestHistory("c1"), "How long is shipping?"), reqs[0].Prompt)
}

func TestGenerateReply_ShortCircuit(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"   ", classify.EmptyReply},
		{"😀😀😀", classify.EmojiReply},
		{"aaaaaaaaaa", classify.GibberishReply},
		{"asdkjashdkjashdkjashdkjashdkjashd", classify.GibberishReply},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			mock := testutil.NewMockProvider(flashModel)
			g, _ := newGateway(t, mock)

			reply, err := g.GenerateReply(context.Background(), nil, tt.message)
			require.NoError(t, err)
			assert.Equal(t, tt.want, reply)
			assert.Zero(t, mock.Calls(""), "short-circuit must not call upstream")
		})
	}
}

func TestGenerateReply_RateLimitThenSuccess(t *testing.T) {
	mock := testutil.NewMockProvider(flashModel).Script(map[string][]testutil.Response{
		flashModel: {
			{Err: status(429)},
			{Err: status(429)},
			{Text: "third time lucky"},
		},
	})
	g, rec := newGateway(t, mock)

	reply, err := g.GenerateReply(context.Background(), nil, "Where is my order?")
	require.NoError(t, err)
	assert.Equal(t, "third time lucky", reply)
	assert.Equal(t, 3, mock.Calls(flashModel))
	assert.Zero(t, mock.Calls(fallbackModel))

	delays := rec.all()
	require.Len(t, delays, 2)
	for i, d := range delays {
		assert.LessOrEqual(t, d, 10*time.Second)
		if i > 0 {
			assert.Greater(t, d, delays[i-1], "backoff must strictly increase")
		}
	}
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
}

func TestGenerateReply_ServerErrorBackoff(t *testing.T) {
	mock := testutil.NewMockProvider(flashModel).Script(map[string][]testutil.Response{
		flashModel: {{Err: status(503)}, {Err: status(500)}, {Text: "ok"}},
	})
	g, rec := newGateway(t, mock)

	reply, err := g.GenerateReply(context.Background(), nil, "hello there")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.all())
}

func TestGenerateReply_NotFoundSwitchesModel(t *testing.T) {
	mock := testutil.NewMockProvider(flashModel).Script(map[string][]testutil.Response{
		flashModel:    {{Err: status(404)}},
		fallbackModel: {{Text: "from the fallback model"}},
	})
	g, rec := newGateway(t, mock)

	reply, err := g.GenerateReply(context.Background(), nil, "Do you sell hats?")
	require.NoError(t, err)
	assert.Equal(t, "from the fallback model", reply)
	assert.Equal(t, 1, mock.Calls(flashModel), "not-found must not be retried on the same model")
	assert.Equal(t, 1, mock.Calls(fallbackModel))
	assert.Empty(t, rec.all())
}

func TestGenerateReply_RateLimitExhaustedSwitchesModel(t *testing.T) {
	mock := testutil.NewMockProvider(flashModel).Script(map[string][]testutil.Response{
		flashModel:    {{Err: status(429)}},
		fallbackModel: {{Text: "fallback answer"}},
	})
	g, _ := newGateway(t, mock)

	reply, err := g.GenerateReply(context.Background(), nil, "Do you sell hats?")
	require.NoError(t, err)
	assert.Equal(t, "fallback answer", reply)
	assert.Equal(t, 3, mock.Calls(flashModel))
	assert.Equal(t, 1, mock.Calls(fallbackModel))
}

func TestGenerateReply_NoSwitchWithoutFastTier(t *testing.T) {
	mock := testutil.NewMockProvider("gemini-pro").Script(map[string][]testutil.Response{
		"gemini-pro":  {{Err: status(404)}},
		fallbackModel: {{Text: "should not be used"}},
	})
	g, _ := newGateway(t, mock, gateway.WithModels("gemini-pro", fallbackModel))

	reply, err := g.GenerateReply(context.Background(), nil, "what about delivery")
	require.NoError(t, err)
	assert.Equal(t, gateway.ShippingAnswer, reply)
	assert.Zero(t, mock.Calls(fallbackModel))
}

func TestGenerateReply_NoSwitchForServerErrors(t *testing.T) {
	mock := testutil.NewMockProvider(flashModel).Script(map[string][]testutil.Response{
		flashModel: {{Err: status(500)}},
	})
	g, rec := newGateway(t, mock)

	reply, err := g.GenerateReply(context.Background(), nil, "tell me something")
	require.NoError(t, err)
	assert.Equal(t, gateway.HighDemandAnswer, reply)
	assert.Equal(t, 3, mock.Calls(flashModel))
	assert.Zero(t, mock.Calls(fallbackModel))
	assert.Len(t, rec.all(), 2)
}

func TestGenerateReply_ExhaustionUsesKeywordAnswer(t *testing.T) {
	mock := testutil.NewMockProvider(flashModel).Script(map[string][]testutil.Response{
		flashModel:    {{Err: status(429)}},
		fallbackModel: {{Err: status(429)}},
	})
	g, _ := newGateway(t, mock)

	reply, err := g.GenerateReply(context.Background(), nil, "I need a refund for my order")
	require.NoError(t, err)
	assert.Equal(t, gateway.ReturnsAnswer, reply)
	assert.Equal(t, 3, mock.Calls(flashModel))
	assert.Equal(t, 3, mock.Calls(fallbackModel))
}

func TestGenerateReply_EmptyResponseRetried(t *testing.T) {
	mock := testutil.NewMockProvider(flashModel).Script(map[string][]testutil.Response{
		flashModel: {{Text: ""}, {Text: "   "}, {Text: "finally"}},
	})
	g, rec := newGateway(t, mock)

	reply, err := g.GenerateReply(context.Background(), nil, "hello there")
	require.NoError(t, err)
	assert.Equal(t, "finally", reply)
	assert.Empty(t, rec.all(), "empty responses retry without delay")
}

func TestGenerateReply_UnknownErrorsDegrade(t *testing.T) {
	mock := testutil.NewMockProvider(flashModel).Script(map[string][]testutil.Response{
		flashModel: {{Err: errors.New("connection reset by peer")}},
	})
	g, _ := newGateway(t, mock)

	reply, err := g.GenerateReply(context.Background(), nil, "what payment options")
	require.NoError(t, err)
	assert.Equal(t, gateway.PaymentAnswer, reply)
	assert.Equal(t, 3, mock.Calls(flashModel))
	assert.Zero(t, mock.Calls(fallbackModel))
}

func TestGenerateReply_AuthIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"401", status(401)},
		{"403", status(403)},
		{"api key text", errors.New("API key not valid. Please pass a valid API key.")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockProvider(flashModel).Script(map[string][]testutil.Response{
				flashModel: {{Err: tt.err}},
			})
			g, rec := newGateway(t, mock)

			_, err := g.GenerateReply(context.Background(), nil, "refund please")
			require.Error(t, err)
			assert.ErrorIs(t, err, gateway.ErrAuthConfiguration)
			assert.Equal(t, 1, mock.Calls(flashModel))
			assert.Zero(t, mock.Calls(fallbackModel))
			assert.Empty(t, rec.all())
		})
	}
}

func TestGenerateReply_AuthOnFallbackModel(t *testing.T) {
	mock := testutil.NewMockProvider(flashModel).Script(map[string][]testutil.Response{
		flashModel:    {{Err: status(404)}},
		fallbackModel: {{Err: status(401)}},
	})
	g, _ := newGateway(t, mock)

	_, err := g.GenerateReply(context.Background(), nil, "hello there")
	assert.ErrorIs(t, err, gateway.ErrAuthConfiguration)
}

func TestGenerateReply_MissingCredentials(t *testing.T) {
	handle := provider.NewHandle(func(ctx context.Context) (model.Provider, error) {
		return nil, errors.New("gemini API key not configured: " + provider.ErrMissingCredentials.Error())
	})
	g := gateway.New(handle)

	_, err := g.GenerateReply(context.Background(), nil, "hello there")
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrAuthConfiguration)
	assert.Contains(t, err.Error(), "API key not configured")
}

func TestGenerateReply_MissingCredentialsSentinel(t *testing.T) {
	handle := provider.NewHandle(func(ctx context.Context) (model.Provider, error) {
		return nil, provider.ErrMissingCredentials
	})
	g := gateway.New(handle)

	_, err := g.GenerateReply(context.Background(), nil, "hello there")
	assert.ErrorIs(t, err, gateway.ErrAuthConfiguration)
	assert.ErrorIs(t, err, provider.ErrMissingCredentials)
}

func TestGenerateReply_TruncatesHistory(t *testing.T) {
	mock := testutil.NewMockProvider(flashModel)
	g, _ := newGateway(t, mock, gateway.WithMaxHistory(5))

	history := testutil.LongHistory("c1", 12)
	_, err := g.GenerateReply(context.Background(), history, "latest question")
	require.NoError(t, err)

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, gateway.BuildPrompt(history[7:], "latest question"), reqs[0].Prompt)
	assert.NotContains(t, reqs[0].Prompt, "turn 7\n")
	assert.Contains(t, reqs[0].Prompt, "turn 8\n")
}

func TestGenerateReply_DefaultModelFromProvider(t *testing.T) {
	mock := testutil.NewMockProvider("llama3.1:latest")
	g := gateway.New(provider.StaticHandle(mock))

	_, err := g.GenerateReply(context.Background(), nil, "hello there")
	require.NoError(t, err)
	assert.Equal(t, 1, mock.Calls("llama3.1:latest"))
}

func TestGenerateReply_IgnoresCallerCancellation(t *testing.T) {
	mock := testutil.NewMockProvider(flashModel)
	mock.GenerateFunc = func(ctx context.Context, req model.GenerateRequest) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		_, hasDeadline := ctx.Deadline()
		if !hasDeadline {
			return "", errors.New("attempt should carry a timeout")
		}
		return "still answered", nil
	}
	g, _ := newGateway(t, mock, gateway.WithRequestTimeout(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reply, err := g.GenerateReply(ctx, nil, "hello there")
	require.NoError(t, err)
	assert.Equal(t, "still answered", reply)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.LLM.Model = "gemini-2.0-flash-lite"
	cfg.LLM.FallbackModel = "gemini-flash-latest"
	cfg.LLM.MaxHistory = 2
	cfg.LLM.MaxAttempts = 1
	cfg.LLM.MaxTokens = 77

	mock := testutil.NewMockProvider("ignored").Script(map[string][]testutil.Response{
		"gemini-2.0-flash-lite": {{Err: status(429)}},
		"gemini-flash-latest":   {{Text: "switched"}},
	})
	g := gateway.New(provider.StaticHandle(mock), gateway.OptionsFromConfig(cfg)...)

	reply, err := g.GenerateReply(context.Background(), testutil.TestHistory("c1"), "hello there")
	require.NoError(t, err)
	assert.Equal(t, "switched", reply)
	assert.Equal(t, 1, mock.Calls("gemini-2.0-flash-lite"))

	reqs := mock.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, 77, reqs[1].MaxOutputTokens)
	assert.NotContains(t, reqs[1].Prompt, "do you ship to Canada")
}
