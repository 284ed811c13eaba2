package response

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"rag-assistant-be/pkg/llm"
)

type fakeLLM struct {
	answer string
	chunks []string
	err    error
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.answer, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.answer, f.err
}

func (f *fakeLLM) ChatStream(ctx context.Context, history []llm.Message, fn llm.StreamFunc, options ...llm.Option) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	var b strings.Builder
	for _, c := range f.chunks {
		if err := fn(c); err != nil {
			return b.String(), err
		}
		b.WriteString(c)
	}
	return b.String(), nil
}

type recordingSink struct {
	mu      sync.Mutex
	chunks  []string
	done    bool
	answer  string
	sources []string
	errMsg  string
	signal  chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{signal: make(chan struct{}, 1)}
}

func (s *recordingSink) SendChunk(sessionKey, chunk string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunk)
}

func (s *recordingSink) SendDone(sessionKey, answer string, sources []string) {
	s.mu.Lock()
	s.done = true
	s.answer = answer
	s.sources = sources
	s.mu.Unlock()
	s.signal <- struct{}{}
}

func (s *recordingSink) SendError(sessionKey, message string) {
	s.mu.Lock()
	s.errMsg = message
	s.mu.Unlock()
	s.signal <- struct{}{}
}

func (s *recordingSink) wait(t *testing.T) {
	t.Helper()
	select {
	case <-s.signal:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not finish")
	}
}

func TestAnswerBatch(t *testing.T) {
	g := NewGenerator(&fakeLLM{answer: "grounded answer"}, newRecordingSink())

	answer, err := g.Answer(context.Background(), "q", "ctx", "User: q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "grounded answer" {
		t.Errorf("answer = %q", answer)
	}
}

func TestAnswerBatchError(t *testing.T) {
	g := NewGenerator(&fakeLLM{err: errors.New("model down")}, newRecordingSink())

	if _, err := g.Answer(context.Background(), "q", "", ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestAnswerStreamDeliversChunksAndCompletes(t *testing.T) {
	sink := newRecordingSink()
	g := NewGenerator(&fakeLLM{chunks: []string{"Hel", "lo"}}, sink)

	var completed string
	var wg sync.WaitGroup
	wg.Add(1)
	g.AnswerStream(context.Background(), "s1", "q", "", "", []string{"System Docs"}, func(answer string) {
		completed = answer
		wg.Done()
	})

	sink.wait(t)
	wg.Wait()

	if completed != "Hello" {
		t.Errorf("completed answer = %q", completed)
	}
	if len(sink.chunks) != 2 || sink.chunks[0] != "Hel" || sink.chunks[1] != "lo" {
		t.Errorf("chunks = %v", sink.chunks)
	}
	if !sink.done || sink.answer != "Hello" {
		t.Errorf("done signal missing or wrong: done=%v answer=%q", sink.done, sink.answer)
	}
	if len(sink.sources) != 1 || sink.sources[0] != "System Docs" {
		t.Errorf("sources = %v", sink.sources)
	}
}

func TestAnswerStreamErrorSkipsCompletion(t *testing.T) {
	sink := newRecordingSink()
	g := NewGenerator(&fakeLLM{err: errors.New("stream broke")}, sink)

	g.AnswerStream(context.Background(), "s1", "q", "", "", nil, func(string) {
		t.Error("onComplete called after stream error")
	})

	sink.wait(t)
	if sink.errMsg == "" {
		t.Error("expected error signal on sink")
	}
	if sink.done {
		t.Error("done signal sent after error")
	}
}

func TestSourceSuffix(t *testing.T) {
	tests := []struct {
		name    string
		sources []string
		want    string
	}{
		{"none", nil, ""},
		{
			"single",
			[]string{"User Docs"},
			"<ul style='margin-top:5px;color:blue;font-size:0.8rem;'><li>User Docs</li></ul>",
		},
		{
			"both in order",
			[]string{"User Docs", "System Docs"},
			"<ul style='margin-top:5px;color:blue;font-size:0.8rem;'><li>User Docs</li><li>System Docs</li></ul>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SourceSuffix(tt.sources); got != tt.want {
				t.Errorf("SourceSuffix(%v) = %q, want %q", tt.sources, got, tt.want)
			}
		})
	}
}

func TestBuildPromptContainsSections(t *testing.T) {
	p := BuildPrompt("what is the refund window?", "### System Context (company docs)\n- Refunds within 30 days.\n", "User: what is the refund window?")
	for _, want := range []string{"refund window", "Refunds within 30 days.", "User: what is the refund window?"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
