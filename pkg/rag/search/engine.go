package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rag-assistant-be/internal/repository/contract"
	"rag-assistant-be/pkg/embedding"
	"rag-assistant-be/pkg/rag/assemble"
	"rag-assistant-be/pkg/rag/intent"
	"rag-assistant-be/pkg/store"
)

// ErrEmbeddingUnavailable means the query could not be embedded. The turn is
// abandoned silently: the user's turn stays in the transcript, nothing is
// reported.
var ErrEmbeddingUnavailable = errors.New("query embedding unavailable")

// ErrNoSystemResults means the shared system index returned zero hits. The
// turn fails hard with a fixed user-facing message.
var ErrNoSystemResults = errors.New("no system index results")

const (
	DefaultPersonalTopK = 3
	DefaultSystemTopK   = 5
	DefaultTimeout      = 15 * time.Second

	embeddingTaskType = "RETRIEVAL_QUERY"
)

// Engine embeds a query and runs it against the indexes an intent routes to.
// Results come back normalized per source, ready for assembly.
type Engine struct {
	embedder embedding.EmbeddingProvider
	index    contract.DocumentIndexRepository

	personalTopK int
	systemTopK   int
	timeout      time.Duration
}

type Config struct {
	PersonalTopK int
	SystemTopK   int
	Timeout      time.Duration
}

func NewEngine(embedder embedding.EmbeddingProvider, index contract.DocumentIndexRepository, cfg Config) *Engine {
	if cfg.PersonalTopK <= 0 {
		cfg.PersonalTopK = DefaultPersonalTopK
	}
	if cfg.SystemTopK <= 0 {
		cfg.SystemTopK = DefaultSystemTopK
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Engine{
		embedder:     embedder,
		index:        index,
		personalTopK: cfg.PersonalTopK,
		systemTopK:   cfg.SystemTopK,
		timeout:      cfg.Timeout,
	}
}

// Retrieve runs the full retrieval leg of one turn: embed the query, then
// query each routed source in order. An intent that routes nowhere returns
// (nil, nil) without touching the embedder.
//
// Failure semantics per source:
//   - embedding error or empty vector: ErrEmbeddingUnavailable
//   - personal index empty: soft, the source simply contributes no hits
//   - system index empty: ErrNoSystemResults
func (e *Engine) Retrieve(ctx context.Context, sessionKey, query string, in intent.Intent) ([]assemble.SourceHits, error) {
	sources := intent.Route(in)
	if len(sources) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	vector, err := e.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	result := make([]assemble.SourceHits, 0, len(sources))
	for _, source := range sources {
		var hits []store.RetrievalHit
		switch source {
		case intent.SourcePersonal:
			hits, err = e.searchPersonal(ctx, sessionKey, vector)
		case intent.SourceSystem:
			hits, err = e.searchSystem(ctx, vector)
		}
		if err != nil {
			return nil, err
		}
		result = append(result, assemble.SourceHits{Source: source, Hits: hits})
	}
	return result, nil
}

// embed runs the provider off-goroutine so the engine timeout also bounds
// providers that do not take a context.
func (e *Engine) embed(ctx context.Context, query string) ([]float32, error) {
	type embedResult struct {
		resp *embedding.EmbeddingResponse
		err  error
	}

	ch := make(chan embedResult, 1)
	go func() {
		resp, err := e.embedder.Generate(query, embeddingTaskType)
		ch <- embedResult{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, r.err)
		}
		if r.resp == nil || len(r.resp.Embedding.Values) == 0 {
			return nil, ErrEmbeddingUnavailable
		}
		return r.resp.Embedding.Values, nil
	}
}

func (e *Engine) searchPersonal(ctx context.Context, sessionKey string, vector []float32) ([]store.RetrievalHit, error) {
	raw, err := e.index.SearchPersonal(ctx, sessionKey, vector, e.personalTopK)
	if err != nil {
		return nil, fmt.Errorf("personal index search: %w", err)
	}

	hits := make([]store.RetrievalHit, 0, len(raw))
	for _, r := range raw {
		text, ok := r.Metadata["chunk_text"].(string)
		if !ok {
			continue
		}
		hits = append(hits, store.RetrievalHit{
			Text:   assemble.CleanHitText(text),
			Source: intent.SourcePersonal.Label(),
		})
	}
	return hits, nil
}

func (e *Engine) searchSystem(ctx context.Context, vector []float32) ([]store.RetrievalHit, error) {
	raw, err := e.index.SearchSystem(ctx, vector, e.systemTopK)
	if err != nil {
		return nil, fmt.Errorf("system index search: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrNoSystemResults
	}

	hits := make([]store.RetrievalHit, 0, len(raw))
	for _, r := range raw {
		hits = append(hits, store.RetrievalHit{
			Text:   assemble.CleanHitText(r.ChunkText),
			Source: intent.SourceSystem.Label(),
		})
	}
	return hits, nil
}
