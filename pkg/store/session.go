package store

import "sync"

// Speaker identifies who produced a chat turn.
type Speaker string

const (
	SpeakerUser Speaker = "User"
	SpeakerBot  Speaker = "Bot"
)

// ChatTurn is one (speaker, text) entry of a conversation. Immutable once
// created.
type ChatTurn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Transcript is the ordered conversation of one session. Insertion order is
// conversation order and is replayed verbatim into the generation prompt.
type Transcript []ChatTurn

// PendingInput holds the submitted-but-unconsumed widget state of a session:
// the raw query text and the intent label that arrived with it.
type PendingInput struct {
	Query  string `json:"query"`
	Intent string `json:"intent"`
}

// Session represents the active per-session conversation state in memory.
// The cache hands the same instance to every request for a session, and a
// streamed answer lands from the generator's goroutine while the next turn
// may already be running, so all transcript and input access goes through
// the locked methods.
type Session struct {
	ID string

	mu         sync.Mutex
	transcript Transcript
	input      PendingInput
	hydrated   bool
}

// NewSession returns an empty, not yet hydrated session.
func NewSession(id string) *Session {
	return &Session{ID: id}
}

// Append adds a turn to the transcript.
func (s *Session) Append(turn ChatTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, turn)
}

// Turns returns a snapshot copy of the transcript in conversation order.
func (s *Session) Turns() Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(Transcript, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Reset drops the transcript (clear-chat). The session itself stays alive.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = nil
}

// SetInput records the submitted widget state for the turn in flight.
func (s *Session) SetInput(input PendingInput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = input
}

// Input returns the pending widget state.
func (s *Session) Input() PendingInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// ClearInput resets the pending widget state after a completed turn.
func (s *Session) ClearInput() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = PendingInput{}
}

// Hydrated reports whether the transcript has been loaded from durable
// storage since the session entered the cache.
func (s *Session) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// MarkHydrated records that the durable transcript has been loaded.
func (s *Session) MarkHydrated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrated = true
}
