package assemble

import (
	"strings"

	"rag-assistant-be/pkg/rag/intent"
	"rag-assistant-be/pkg/store"
)

// SourceHits pairs one queried source with its ordered hits.
type SourceHits struct {
	Source intent.Source
	Hits   []store.RetrievalHit
}

// QueryResult is the assembled grounding material for one turn: the labeled
// context string handed to generation, plus the distinct source labels that
// actually contributed, in the order first encountered.
type QueryResult struct {
	Context string
	Sources []string
}

// Assemble merges per-source hits into a single labeled context string. For
// each source, in router order: a heading, then one bullet per hit. A source
// label is recorded only when that source returned at least one hit, so an
// empty personal search never claims "User Docs" provenance. Zero hits
// overall produce the empty context, which downstream reads as "no
// grounding".
func Assemble(sourceHits []SourceHits) QueryResult {
	var b strings.Builder
	var sources []string

	for _, sh := range sourceHits {
		if len(sh.Hits) == 0 {
			continue
		}
		b.WriteString(sh.Source.Heading())
		for _, hit := range sh.Hits {
			b.WriteString("- ")
			b.WriteString(hit.Text)
			b.WriteString("\n")
		}
		sources = append(sources, sh.Source.Label())
	}

	return QueryResult{
		Context: b.String(),
		Sources: sources,
	}
}

// CleanHitText collapses a raw passage to a single line: newlines become
// spaces and surrounding whitespace is trimmed.
func CleanHitText(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
}
