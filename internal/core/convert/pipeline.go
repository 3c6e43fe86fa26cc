package convert

import (
	"context"
	"time"

	"rcip-agent/internal/core/rcip"
	"rcip-agent/internal/core/store"
	"rcip-agent/internal/infrastructure/config"
	"rcip-agent/internal/pkg/common"

	"go.uber.org/zap"
)

// State names one phase of a conversion.
type State string

const (
	StateStart       State = "start"
	StateExtracting  State = "extracting"
	StateNormalizing State = "normalizing"
	StatePersisting  State = "persisting"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// retryable is the explicit retry policy: only transient upstream outages
// are retried, structurally bad input or responses are terminal because
// retrying cannot change them.
var retryable = map[common.FailKind]bool{
	common.KindServiceUnavailable: true,
}

// Request is one conversion request. Requests are independent; the pipeline
// keeps no state between them.
type Request struct {
	Name      string
	RawText   string
	SourceURL string
}

// Result is a successful conversion.
type Result struct {
	Record *rcip.RecipeRecord
	Path   string
}

// Pipeline orchestrates extract → normalize → persist for one request at a
// time.
type Pipeline struct {
	extractor *Extractor
	store     *store.Store
	cfg       *config.ConvertConfig
}

// NewPipeline wires the conversion pipeline.
func NewPipeline(extractor *Extractor, recordStore *store.Store, cfg *config.ConvertConfig) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		store:     recordStore,
		cfg:       cfg,
	}
}

// Convert runs the full state machine for one request. On failure it
// returns the typed error from the failing component; no partial output file
// is left behind.
func (p *Pipeline) Convert(ctx context.Context, req Request) (*Result, error) {
	state := StateExtracting
	candidate, err := p.extractWithRetry(ctx, req)
	if err != nil {
		return nil, p.fail(req.Name, state, err)
	}

	state = StateNormalizing
	record, err := Normalize(candidate, req.SourceURL)
	if err != nil {
		return nil, p.fail(req.Name, state, err)
	}

	state = StatePersisting
	path, err := p.store.Save(record)
	if err != nil {
		return nil, p.fail(req.Name, state, err)
	}

	common.LogInfo("conversion done",
		zap.String("recipe", req.Name),
		zap.String("id", record.ID),
		zap.String("path", path),
		zap.Int("ingredients", len(record.Ingredients)),
		zap.Int("steps", len(record.Steps)),
	)

	return &Result{Record: record, Path: path}, nil
}

// extractWithRetry retries the Extracting state with exponential backoff for
// retryable kinds, up to the configured attempt bound.
func (p *Pipeline) extractWithRetry(ctx context.Context, req Request) (*RawCandidate, error) {
	var lastErr error

	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		candidate, err := p.extractor.Extract(ctx, req.RawText, req.Name)
		if err == nil {
			return candidate, nil
		}
		lastErr = err

		kind := common.KindOf(err)
		if !retryable[kind] || attempt == p.cfg.MaxAttempts {
			return nil, err
		}

		backoff := p.cfg.RetryBackoff << (attempt - 1)
		common.LogWarn("transient extraction failure, retrying",
			zap.String("recipe", req.Name),
			zap.String("kind", string(kind)),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, common.NewExtractionError(common.KindServiceUnavailable, ctx.Err())
		case <-timer.C:
		}
	}

	return nil, lastErr
}

func (p *Pipeline) fail(name string, state State, err error) error {
	common.LogError("conversion failed",
		zap.String("recipe", name),
		zap.String("state", string(state)),
		zap.String("kind", string(common.KindOf(err))),
		zap.Error(err),
	)
	return err
}
