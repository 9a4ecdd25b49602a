package inference

import (
	"context"
	"errors"
	"log/slog"
)

// Chain is a Provider that falls back to the next provider when one is
// overloaded or out of quota. nyaya uses it to retry a query on a lighter
// Gemini model when the configured one answers 429 or 5xx.
//
// A request's Model names the primary. Fallbacks ignore it and answer with
// the model they were built with.
type Chain struct {
	providers []Provider
	logger    *slog.Logger
}

// NewChain returns a chain over providers, tried in order.
func NewChain(providers ...Provider) (*Chain, error) {
	return NewChainWithLogger(slog.Default(), providers...)
}

// NewChainWithLogger is NewChain with an explicit logger.
func NewChainWithLogger(logger *slog.Logger, providers ...Provider) (*Chain, error) {
	if len(providers) == 0 {
		return nil, ErrProviderUnavailable
	}
	return &Chain{
		providers: providers,
		logger:    logger.With("component", "inference.chain"),
	}, nil
}

// Generate asks each provider in turn. Errors that would repeat on any
// model (bad key, rejected prompt, cancelled context) end the walk early.
func (c *Chain) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	var failed []error

	for i, p := range c.providers {
		r := req
		if i > 0 && req != nil && req.Model != "" {
			own := *req
			own.Model = ""
			r = &own
		}

		resp, err := p.Generate(ctx, r)
		if err == nil {
			if i > 0 {
				c.logger.Info("answered by fallback", "index", i, "model", resp.Model)
			}
			return resp, nil
		}
		failed = append(failed, err)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.IsRetryable() {
			break
		}
		if i < len(c.providers)-1 {
			c.logger.Warn("provider failed, falling back", "index", i, "error", err)
		}
	}

	return nil, &ChainError{Errors: failed}
}

// Close closes every provider and reports the first failure.
func (c *Chain) Close() error {
	var first error
	for _, p := range c.providers {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Len returns the number of providers.
func (c *Chain) Len() int { return len(c.providers) }

var _ Provider = (*Chain)(nil)
