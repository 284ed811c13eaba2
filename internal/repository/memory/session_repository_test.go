package memory

import (
	"testing"

	"rag-assistant-be/pkg/store"
)

func TestSaveAndGet(t *testing.T) {
	repo := NewSessionRepository()

	s := store.NewSession("s1")
	s.Append(store.ChatTurn{Speaker: store.SpeakerUser, Text: "hello"})
	repo.Save(s)

	got, found := repo.Get("s1")
	if !found {
		t.Fatal("session not found after Save")
	}
	if got != s {
		t.Error("Get returned a different session instance")
	}
	if len(got.Turns()) != 1 {
		t.Errorf("transcript length = %d, want 1", len(got.Turns()))
	}
}

func TestGetMissing(t *testing.T) {
	repo := NewSessionRepository()

	if _, found := repo.Get("nope"); found {
		t.Error("Get reported a session that was never saved")
	}
}

func TestGetOrCreate(t *testing.T) {
	repo := NewSessionRepository()

	s := repo.GetOrCreate("s1")
	if s.ID != "s1" {
		t.Errorf("ID = %q, want s1", s.ID)
	}
	if s.Hydrated() {
		t.Error("fresh session reported as hydrated")
	}

	again := repo.GetOrCreate("s1")
	if again != s {
		t.Error("GetOrCreate created a second instance for the same key")
	}
}

func TestDelete(t *testing.T) {
	repo := NewSessionRepository()

	repo.Save(store.NewSession("s1"))
	repo.Delete("s1")

	if _, found := repo.Get("s1"); found {
		t.Error("session still present after Delete")
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	repo := NewSessionRepository()

	a := repo.GetOrCreate("a")
	b := repo.GetOrCreate("b")
	a.Append(store.ChatTurn{Speaker: store.SpeakerUser, Text: "only in a"})

	if len(b.Turns()) != 0 {
		t.Error("appending to one session leaked into another")
	}
	if len(a.Turns()) != 1 {
		t.Error("append lost")
	}
}
