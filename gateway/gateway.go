// Package gateway turns a conversation into a support reply. It owns the
// prompt layout, the retry and model fallback policy, and the canned answers
// used when the upstream model cannot be reached.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"spurchat/classify"
	"spurchat/config"
	"spurchat/model"
	"spurchat/provider"
)

// ErrAuthConfiguration means the upstream credentials are missing or were
// rejected. It is never retried and never degraded to a canned answer.
var ErrAuthConfiguration = errors.New("upstream authentication failed; check the configured API key")

const (
	defaultMaxHistory  = config.DefaultMaxHistory
	defaultMaxAttempts = config.DefaultMaxAttempts
	defaultMaxTokens   = config.DefaultMaxTokens
	defaultTimeout     = config.DefaultRequestTimeout
	defaultFastMarker  = config.DefaultFastTierMarker
)

// Gateway generates replies through a single shared provider handle.
type Gateway struct {
	handle *provider.Handle
	logger zerolog.Logger

	primary     string
	fallback    string
	fastMarker  string
	maxHistory  int
	maxAttempts int
	maxTokens   int
	timeout     time.Duration
	sleeper     func(time.Duration)
}

// Option customizes the gateway.
type Option func(*Gateway)

// WithModels sets the primary and fallback model names. An empty primary
// uses the provider's default model; an empty fallback disables the
// model switch.
func WithModels(primary, fallback string) Option {
	return func(g *Gateway) {
		g.primary = strings.TrimSpace(primary)
		g.fallback = strings.TrimSpace(fallback)
	}
}

// WithFastTierMarker sets the substring that marks the primary model as
// eligible for the fallback switch.
func WithFastTierMarker(marker string) Option {
	return func(g *Gateway) {
		if marker != "" {
			g.fastMarker = marker
		}
	}
}

// WithMaxHistory bounds how many prior turns go into the prompt.
func WithMaxHistory(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.maxHistory = n
		}
	}
}

// WithMaxAttempts sets attempts per model (defaults to 3).
func WithMaxAttempts(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithMaxTokens sets the advisory output size hint.
func WithMaxTokens(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.maxTokens = n
		}
	}
}

// WithRequestTimeout bounds each upstream attempt.
func WithRequestTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithSleeper overrides how backoff sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(g *Gateway) {
		g.sleeper = sleeper
	}
}

// WithLogger sets the logger for retry and degrade decisions.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// OptionsFromConfig maps the [llm] configuration onto gateway options.
func OptionsFromConfig(cfg *config.Config) []Option {
	return []Option{
		WithModels(cfg.LLM.Model, cfg.LLM.FallbackModel),
		WithFastTierMarker(cfg.LLM.FastTierMarker),
		WithMaxHistory(cfg.LLM.MaxHistory),
		WithMaxAttempts(cfg.LLM.MaxAttempts),
		WithMaxTokens(cfg.LLM.MaxTokens),
		WithRequestTimeout(cfg.RequestTimeout()),
	}
}

// New constructs a gateway around handle.
func New(handle *provider.Handle, opts ...Option) *Gateway {
	g := &Gateway{
		handle:      handle,
		logger:      zerolog.Nop(),
		fastMarker:  defaultFastMarker,
		maxHistory:  defaultMaxHistory,
		maxAttempts: defaultMaxAttempts,
		maxTokens:   defaultMaxTokens,
		timeout:     defaultTimeout,
		sleeper:     time.Sleep,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With().Str("component", "gateway").Logger()
	return g
}

// modelError is the terminal failure of one model's attempt loop.
type modelError struct {
	model    string
	kind     provider.ErrorKind
	decision Decision
	attempts int
	err      error
}

func (e *modelError) Error() string {
	return fmt.Sprintf("model %s: %s after %d attempt(s): %v", e.model, e.kind, e.attempts, e.err)
}

func (e *modelError) Unwrap() error { return e.err }

// GenerateReply produces the assistant reply for newMessage given the prior
// turns. Upstream failures degrade to a canned answer; the only error
// returned wraps ErrAuthConfiguration.
//
// Upstream calls are detached from ctx cancellation. Each attempt is bounded
// by the request timeout instead.
func (g *Gateway) GenerateReply(ctx context.Context, history []model.Message, newMessage string) (string, error) {
	category := classify.Message(newMessage)
	if reply, ok := classify.CannedReply(category); ok {
		g.logger.Debug().Str("category", category.String()).Msg("short-circuit reply")
		return reply, nil
	}

	prompt := BuildPrompt(Truncate(history, g.maxHistory), newMessage)
	upstream := context.WithoutCancel(ctx)

	p, err := g.handle.Get(upstream)
	if err != nil {
		if provider.Classify(err) == provider.KindAuth {
			g.logger.Error().Err(err).Msg("upstream client not configured")
			return "", fmt.Errorf("%w: %w", ErrAuthConfiguration, err)
		}
		g.logger.Error().Err(err).Msg("upstream client unavailable, using fallback answer")
		return FallbackAnswer(newMessage), nil
	}

	primary := g.primary
	if primary == "" {
		primary = p.DefaultModel()
	}

	text, err := g.runModel(upstream, p, primary, prompt)
	if err == nil {
		return text, nil
	}

	var me *modelError
	if !errors.As(err, &me) {
		return FallbackAnswer(newMessage), nil
	}
	if me.decision == Fatal {
		return "", g.authError(p, me)
	}

	if g.shouldSwitch(primary, me.kind) {
		g.logger.Warn().
			Str("provider", p.Name()).
			Str("model", primary).
			Str("fallback_model", g.fallback).
			Str("kind", me.kind.String()).
			Msg("primary model failed, trying fallback model")

		text, ferr := g.runModel(upstream, p, g.fallback, prompt)
		if ferr == nil {
			return text, nil
		}
		if errors.As(ferr, &me) && me.decision == Fatal {
			return "", g.authError(p, me)
		}
		g.logger.Error().Err(ferr).Str("provider", p.Name()).Msg("fallback model also failed")
	}

	g.logger.Error().
		Err(err).
		Str("provider", p.Name()).
		Str("model", primary).
		Msg("upstream exhausted, using fallback answer")
	return FallbackAnswer(newMessage), nil
}

func (g *Gateway) shouldSwitch(primary string, kind provider.ErrorKind) bool {
	if g.fallback == "" {
		return false
	}
	if kind != provider.KindNotFound && kind != provider.KindRateLimit {
		return false
	}
	return strings.Contains(primary, g.fastMarker)
}

func (g *Gateway) authError(p model.Provider, me *modelError) error {
	g.logger.Error().
		Err(me.err).
		Str("provider", p.Name()).
		Str("model", me.model).
		Msg("upstream rejected credentials")
	return fmt.Errorf("%w: %w", ErrAuthConfiguration, me.err)
}

// runModel is the attempt loop for a single model.
func (g *Gateway) runModel(ctx context.Context, p model.Provider, modelName, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		text, err := g.attempt(ctx, p, modelName, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		kind := provider.Classify(err)
		decision, delay := Decide(kind, attempt, g.maxAttempts)

		event := g.logger.Warn()
		if decision == Fatal {
			event = g.logger.Error()
		}
		event.Err(err).
			Str("provider", p.Name()).
			Str("model", modelName).
			Int("attempt", attempt+1).
			Str("kind", kind.String()).
			Str("decision", decision.String()).
			Dur("delay", delay).
			Msg("upstream attempt failed")

		if decision != Retry {
			return "", &modelError{
				model:    modelName,
				kind:     kind,
				decision: decision,
				attempts: attempt + 1,
				err:      err,
			}
		}
		if delay > 0 {
			g.sleeper(delay)
		}
	}

	return "", &modelError{
		model:    modelName,
		kind:     provider.Classify(lastErr),
		decision: Exhausted,
		attempts: g.maxAttempts,
		err:      lastErr,
	}
}

func (g *Gateway) attempt(ctx context.Context, p model.Provider, modelName, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := p.Generate(ctx, model.GenerateRequest{
		Model:           modelName,
		Prompt:          prompt,
		MaxOutputTokens: g.maxTokens,
	})
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", provider.ErrEmptyResponse
	}
	return text, nil
}
