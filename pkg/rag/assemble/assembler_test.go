package assemble

import (
	"strings"
	"testing"

	"rag-assistant-be/pkg/rag/intent"
	"rag-assistant-be/pkg/store"
)

func TestAssembleEmpty(t *testing.T) {
	res := Assemble(nil)
	if res.Context != "" {
		t.Errorf("empty input should produce empty context, got %q", res.Context)
	}
	if len(res.Sources) != 0 {
		t.Errorf("empty input should record no sources, got %v", res.Sources)
	}
}

func TestAssembleSkipsEmptySources(t *testing.T) {
	// Hybrid turn where the personal index came back empty: only System Docs
	// may appear in the provenance list.
	res := Assemble([]SourceHits{
		{Source: intent.SourcePersonal, Hits: nil},
		{Source: intent.SourceSystem, Hits: []store.RetrievalHit{
			{Text: "Refunds within 30 days.", Source: "System Docs"},
		}},
	})

	if len(res.Sources) != 1 || res.Sources[0] != "System Docs" {
		t.Errorf("sources = %v, want [System Docs]", res.Sources)
	}
	if strings.Contains(res.Context, "Personal Context") {
		t.Errorf("context should not contain the personal heading: %q", res.Context)
	}
	if !strings.Contains(res.Context, "### System Context (company docs)\n") {
		t.Errorf("missing system heading in %q", res.Context)
	}
	if !strings.Contains(res.Context, "- Refunds within 30 days.\n") {
		t.Errorf("missing bullet line in %q", res.Context)
	}
}

func TestAssembleOrdering(t *testing.T) {
	res := Assemble([]SourceHits{
		{Source: intent.SourcePersonal, Hits: []store.RetrievalHit{
			{Text: "my upload", Source: "User Docs"},
		}},
		{Source: intent.SourceSystem, Hits: []store.RetrievalHit{
			{Text: "company doc", Source: "System Docs"},
		}},
	})

	if len(res.Sources) != 2 || res.Sources[0] != "User Docs" || res.Sources[1] != "System Docs" {
		t.Fatalf("sources = %v, want [User Docs System Docs]", res.Sources)
	}

	personalAt := strings.Index(res.Context, "Personal Context")
	systemAt := strings.Index(res.Context, "System Context")
	if personalAt < 0 || systemAt < 0 || personalAt > systemAt {
		t.Errorf("personal section must precede system section in %q", res.Context)
	}
}

func TestAssembleMultipleBullets(t *testing.T) {
	res := Assemble([]SourceHits{
		{Source: intent.SourceSystem, Hits: []store.RetrievalHit{
			{Text: "first", Source: "System Docs"},
			{Text: "second", Source: "System Docs"},
			{Text: "third", Source: "System Docs"},
		}},
	})

	if got := strings.Count(res.Context, "- "); got != 3 {
		t.Errorf("bullet count = %d in %q, want 3", got, res.Context)
	}
	if !strings.HasSuffix(res.Context, "- third\n") {
		t.Errorf("bullets must keep hit order, got %q", res.Context)
	}
}

func TestCleanHitText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  plain  ", "plain"},
		{"line one\nline two", "line one line two"},
		{"\nlead\ntrail\n", "lead trail"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanHitText(tt.in); got != tt.want {
			t.Errorf("CleanHitText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
