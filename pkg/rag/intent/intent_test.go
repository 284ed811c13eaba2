package intent

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Intent
	}{
		{"none", IntentNone},
		{"user_docs", IntentUserDocs},
		{"system_docs", IntentSystemDocs},
		{"hybrid", IntentHybrid},
		{"", IntentNone},
		{"USER_DOCS", IntentNone},
		{"everything", IntentNone},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Parse(tt.raw)
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestRoute(t *testing.T) {
	tests := []struct {
		name string
		in   Intent
		want []Source
	}{
		{"none routes nowhere", IntentNone, nil},
		{"user docs", IntentUserDocs, []Source{SourcePersonal}},
		{"system docs", IntentSystemDocs, []Source{SourceSystem}},
		{"hybrid queries personal first", IntentHybrid, []Source{SourcePersonal, SourceSystem}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Route(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("Route(%q) returned %d sources, want %d", tt.in, len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Route(%q)[%d] = %v, want %v", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSourceLabels(t *testing.T) {
	if SourcePersonal.Label() != "User Docs" {
		t.Errorf("personal label = %q", SourcePersonal.Label())
	}
	if SourceSystem.Label() != "System Docs" {
		t.Errorf("system label = %q", SourceSystem.Label())
	}
	if SourcePersonal.Heading() == SourceSystem.Heading() {
		t.Error("source headings must be distinct")
	}
}
