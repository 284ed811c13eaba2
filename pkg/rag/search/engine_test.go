package search

import (
	"context"
	"errors"
	"testing"

	"rag-assistant-be/internal/entity"
	"rag-assistant-be/internal/repository/contract"
	"rag-assistant-be/pkg/embedding"
	"rag-assistant-be/pkg/rag/intent"
)

type fakeEmbedder struct {
	values []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: f.values},
	}, nil
}

type fakeIndex struct {
	personal []*contract.PersonalIndexHit
	system   []*contract.SystemIndexHit

	personalErr    error
	systemErr      error
	personalCalls  int
	systemCalls    int
	lastSessionKey string
}

func (f *fakeIndex) SearchPersonal(ctx context.Context, sessionKey string, embedding []float32, limit int) ([]*contract.PersonalIndexHit, error) {
	f.personalCalls++
	f.lastSessionKey = sessionKey
	return f.personal, f.personalErr
}

func (f *fakeIndex) SearchSystem(ctx context.Context, embedding []float32, limit int) ([]*contract.SystemIndexHit, error) {
	f.systemCalls++
	return f.system, f.systemErr
}

func (f *fakeIndex) Create(ctx context.Context, chunk *entity.DocumentChunk, embedding []float32) error {
	return nil
}

func (f *fakeIndex) DeletePersonalBySessionKey(ctx context.Context, sessionKey string) error {
	return nil
}

func personalHit(text string) *contract.PersonalIndexHit {
	return &contract.PersonalIndexHit{Metadata: map[string]interface{}{"chunk_text": text}}
}

func TestRetrieveIntentNoneSkipsEverything(t *testing.T) {
	embedder := &fakeEmbedder{values: []float32{0.1}}
	index := &fakeIndex{}
	engine := NewEngine(embedder, index, Config{})

	hits, err := engine.Retrieve(context.Background(), "s1", "hello", intent.IntentNone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits != nil {
		t.Fatalf("expected nil hits, got %v", hits)
	}
	if embedder.calls != 0 {
		t.Errorf("embedder called %d times, want 0", embedder.calls)
	}
	if index.personalCalls != 0 || index.systemCalls != 0 {
		t.Errorf("index queried for intent none")
	}
}

func TestRetrieveEmbeddingFailures(t *testing.T) {
	tests := []struct {
		name     string
		embedder *fakeEmbedder
	}{
		{"provider error", &fakeEmbedder{err: errors.New("boom")}},
		{"empty vector", &fakeEmbedder{values: nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index := &fakeIndex{system: []*contract.SystemIndexHit{{ChunkText: "x"}}}
			engine := NewEngine(tt.embedder, index, Config{})

			_, err := engine.Retrieve(context.Background(), "s1", "q", intent.IntentSystemDocs)
			if !errors.Is(err, ErrEmbeddingUnavailable) {
				t.Fatalf("got %v, want ErrEmbeddingUnavailable", err)
			}
			if index.systemCalls != 0 {
				t.Errorf("index queried after embedding failure")
			}
		})
	}
}

func TestRetrieveHybridOrderAndNormalization(t *testing.T) {
	embedder := &fakeEmbedder{values: []float32{0.1, 0.2}}
	index := &fakeIndex{
		personal: []*contract.PersonalIndexHit{
			personalHit("line one\nline two"),
			{Metadata: map[string]interface{}{"chunk_text": 42}}, // no usable text
		},
		system: []*contract.SystemIndexHit{{ChunkText: "  policy text\nwrapped  "}},
	}
	engine := NewEngine(embedder, index, Config{})

	result, err := engine.Retrieve(context.Background(), "s1", "q", intent.IntentHybrid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("got %d source groups, want 2", len(result))
	}
	if result[0].Source != intent.SourcePersonal || result[1].Source != intent.SourceSystem {
		t.Errorf("sources out of order: %v, %v", result[0].Source, result[1].Source)
	}
	if len(result[0].Hits) != 1 {
		t.Fatalf("got %d personal hits, want 1", len(result[0].Hits))
	}
	if result[0].Hits[0].Text != "line one line two" {
		t.Errorf("personal text = %q", result[0].Hits[0].Text)
	}
	if result[0].Hits[0].Source != "User Docs" {
		t.Errorf("personal label = %q", result[0].Hits[0].Source)
	}
	if result[1].Hits[0].Text != "policy text wrapped" {
		t.Errorf("system text = %q", result[1].Hits[0].Text)
	}
	if index.lastSessionKey != "s1" {
		t.Errorf("personal search session key = %q", index.lastSessionKey)
	}
}

func TestRetrievePersonalEmptyIsSoft(t *testing.T) {
	embedder := &fakeEmbedder{values: []float32{0.1}}
	index := &fakeIndex{
		system: []*contract.SystemIndexHit{{ChunkText: "doc"}},
	}
	engine := NewEngine(embedder, index, Config{})

	result, err := engine.Retrieve(context.Background(), "s1", "q", intent.IntentHybrid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result[0].Hits) != 0 {
		t.Errorf("personal hits = %d, want 0", len(result[0].Hits))
	}
	if len(result[1].Hits) != 1 {
		t.Errorf("system hits = %d, want 1", len(result[1].Hits))
	}
}

func TestRetrieveSystemEmptyFailsHard(t *testing.T) {
	embedder := &fakeEmbedder{values: []float32{0.1}}
	index := &fakeIndex{}
	engine := NewEngine(embedder, index, Config{})

	_, err := engine.Retrieve(context.Background(), "s1", "q", intent.IntentSystemDocs)
	if !errors.Is(err, ErrNoSystemResults) {
		t.Fatalf("got %v, want ErrNoSystemResults", err)
	}
}

func TestRetrieveUserDocsNeverTouchesSystemIndex(t *testing.T) {
	embedder := &fakeEmbedder{values: []float32{0.1}}
	index := &fakeIndex{personal: []*contract.PersonalIndexHit{personalHit("note")}}
	engine := NewEngine(embedder, index, Config{})

	result, err := engine.Retrieve(context.Background(), "s1", "q", intent.IntentUserDocs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if index.systemCalls != 0 {
		t.Errorf("system index queried %d times, want 0", index.systemCalls)
	}
	if len(result) != 1 || len(result[0].Hits) != 1 {
		t.Fatalf("unexpected result shape: %+v", result)
	}
}
