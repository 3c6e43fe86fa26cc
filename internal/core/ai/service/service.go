package service

import (
	"context"
	"strings"

	"rcip-agent/internal/core/ai/cache"
	"rcip-agent/internal/core/ai/provider"
)

// Response is the AI service reply.
type Response struct {
	Content  string
	CacheHit bool
}

// Service fronts a text-generation provider with an optional response cache.
type Service struct {
	generator provider.TextGenerator
	cache     cache.Store
}

// NewService creates the AI service. cacheStore may be nil when caching is
// disabled.
func NewService(generator provider.TextGenerator, cacheStore cache.Store) *Service {
	return &Service{
		generator: generator,
		cache:     cacheStore,
	}
}

// ProcessPrompt sends a prompt through the cache and the provider.
func (s *Service) ProcessPrompt(ctx context.Context, systemMsg, prompt string) (*Response, error) {
	// Normalize whitespace so equivalent prompts share a cache key.
	prompt = strings.TrimSpace(prompt)

	cacheKey := systemMsg + "\x00" + prompt

	if s.cache != nil {
		if val, ok := s.cache.Get(ctx, cacheKey); ok && val != "" {
			return &Response{Content: val, CacheHit: true}, nil
		}
	}

	req := &provider.Request{
		Messages: []provider.Message{
			{Role: "system", Content: systemMsg},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
	}

	resp, err := s.generator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, resp.Content)
	}

	return &Response{Content: resp.Content}, nil
}
