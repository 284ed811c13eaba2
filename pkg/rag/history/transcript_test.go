package history

import (
	"testing"

	"rag-assistant-be/pkg/store"
)

func TestRender(t *testing.T) {
	transcript := store.Transcript{
		{Speaker: store.SpeakerUser, Text: "What is the refund policy?"},
		{Speaker: store.SpeakerBot, Text: "Refunds within 30 days."},
		{Speaker: store.SpeakerUser, Text: "Thanks"},
	}

	want := "User: What is the refund policy?\nBot: Refunds within 30 days.\nUser: Thanks"
	if got := Render(transcript); got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRenderEmpty(t *testing.T) {
	if got := Render(nil); got != "" {
		t.Errorf("empty transcript should render to empty string, got %q", got)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		transcript store.Transcript
	}{
		{
			name: "single exchange",
			transcript: store.Transcript{
				{Speaker: store.SpeakerUser, Text: "hello"},
				{Speaker: store.SpeakerBot, Text: "hi there"},
			},
		},
		{
			name: "user only",
			transcript: store.Transcript{
				{Speaker: store.SpeakerUser, Text: "anyone home?"},
			},
		},
		{
			name: "multiple exchanges",
			transcript: store.Transcript{
				{Speaker: store.SpeakerUser, Text: "q1"},
				{Speaker: store.SpeakerBot, Text: "a1"},
				{Speaker: store.SpeakerUser, Text: "q2"},
				{Speaker: store.SpeakerBot, Text: "a2"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(Render(tt.transcript))
			if len(got) != len(tt.transcript) {
				t.Fatalf("round trip produced %d turns, want %d", len(got), len(tt.transcript))
			}
			for i := range got {
				if got[i] != tt.transcript[i] {
					t.Errorf("turn %d = %+v, want %+v", i, got[i], tt.transcript[i])
				}
			}
		})
	}
}

func TestParseMultilineAnswer(t *testing.T) {
	rendered := "User: list them\nBot: one\ntwo\nthree"
	got := Parse(rendered)
	if len(got) != 2 {
		t.Fatalf("got %d turns, want 2", len(got))
	}
	if got[1].Text != "one\ntwo\nthree" {
		t.Errorf("continuation lines lost: %q", got[1].Text)
	}
}
