package response

import (
	"context"
	"fmt"
	"strings"

	"rag-assistant-be/internal/constant"
	"rag-assistant-be/pkg/llm"
)

// ChunkSink receives the incremental output of a streamed turn. The
// websocket hub implements it; tests swap in a recorder.
type ChunkSink interface {
	SendChunk(sessionKey, chunk string)
	SendDone(sessionKey, answer string, sources []string)
	SendError(sessionKey, message string)
}

// CompleteFunc is called once a streamed answer has fully arrived, with the
// accumulated text. The caller owns appending and persisting the Bot turn.
type CompleteFunc func(answer string)

// Generator turns an assembled query into a model answer, in batch or
// streamed form.
type Generator struct {
	provider llm.LLMProvider
	sink     ChunkSink
}

func NewGenerator(provider llm.LLMProvider, sink ChunkSink) *Generator {
	return &Generator{
		provider: provider,
		sink:     sink,
	}
}

// Answer runs one batch generation over the grounded prompt.
func (g *Generator) Answer(ctx context.Context, query, contextText, conversationText string) (string, error) {
	prompt := BuildPrompt(query, contextText, conversationText)
	answer, err := g.provider.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return "", fmt.Errorf("chat generation: %w", err)
	}
	return answer, nil
}

// AnswerStream starts generation in the background and returns immediately.
// Chunks flow to the sink as they arrive; onComplete fires with the full
// answer when the stream finishes. Stream failures go to the sink as a
// user-facing error signal and onComplete is skipped.
func (g *Generator) AnswerStream(ctx context.Context, sessionKey, query, contextText, conversationText string, sources []string, onComplete CompleteFunc) {
	streamer, ok := g.provider.(llm.StreamingLLMProvider)

	go func() {
		if !ok {
			// Backend cannot stream; fall back to one batch call delivered
			// as a single chunk.
			answer, err := g.Answer(ctx, query, contextText, conversationText)
			if err != nil {
				g.sink.SendError(sessionKey, err.Error())
				return
			}
			g.sink.SendChunk(sessionKey, answer)
			g.sink.SendDone(sessionKey, answer, sources)
			onComplete(answer)
			return
		}

		prompt := BuildPrompt(query, contextText, conversationText)
		answer, err := streamer.ChatStream(ctx, []llm.Message{{Role: "user", Content: prompt}}, func(chunk string) error {
			g.sink.SendChunk(sessionKey, chunk)
			return nil
		})
		if err != nil {
			g.sink.SendError(sessionKey, err.Error())
			return
		}
		g.sink.SendDone(sessionKey, answer, sources)
		onComplete(answer)
	}()
}

// BuildPrompt fills the grounded-answer template. An empty context section
// is passed through as-is; the model is told to admit when it lacks
// grounding.
func BuildPrompt(query, contextText, conversationText string) string {
	return fmt.Sprintf(constant.ChatAnswerPromptV1, contextText, conversationText, query)
}

// SourceSuffix renders the provenance list appended to a non-empty batch
// answer. No sources, no suffix.
func SourceSuffix(sources []string) string {
	if len(sources) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(constant.SourceListOpen)
	for _, s := range sources {
		b.WriteString(constant.SourceItemOpen)
		b.WriteString(s)
		b.WriteString(constant.SourceItemClose)
	}
	b.WriteString(constant.SourceListClose)
	return b.String()
}
