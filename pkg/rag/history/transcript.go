package history

import (
	"strings"

	"rag-assistant-be/pkg/store"
)

// Render flattens a transcript into the conversation text handed to the
// generation backend: one "{speaker}: {text}" line per turn, joined by
// newlines, in conversation order.
func Render(transcript store.Transcript) string {
	lines := make([]string, 0, len(transcript))
	for _, turn := range transcript {
		lines = append(lines, string(turn.Speaker)+": "+turn.Text)
	}
	return strings.Join(lines, "\n")
}

// Parse is the inverse of Render. Lines without a known speaker prefix are
// treated as continuations of the previous turn; this keeps multi-line
// answers intact on the round trip.
func Parse(rendered string) store.Transcript {
	if rendered == "" {
		return nil
	}

	var transcript store.Transcript
	for _, line := range strings.Split(rendered, "\n") {
		if speaker, text, ok := splitTurn(line); ok {
			transcript = append(transcript, store.ChatTurn{Speaker: speaker, Text: text})
			continue
		}
		if n := len(transcript); n > 0 {
			transcript[n-1].Text += "\n" + line
		}
	}
	return transcript
}

func splitTurn(line string) (store.Speaker, string, bool) {
	for _, speaker := range []store.Speaker{store.SpeakerUser, store.SpeakerBot} {
		prefix := string(speaker) + ": "
		if strings.HasPrefix(line, prefix) {
			return speaker, strings.TrimPrefix(line, prefix), true
		}
	}
	return "", "", false
}
