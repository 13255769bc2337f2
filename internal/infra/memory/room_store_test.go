package memory

import (
	"testing"

	"github.com/Atharva587/MultiplayerQuizNew/internal/app"
	"github.com/Atharva587/MultiplayerQuizNew/internal/domain"
)

func TestRoomStoreLifecycle(t *testing.T) {
	store := NewRoomStore()

	room := app.NewRoom("ABCDEF", domain.Player{ID: "p1", Name: "Host"})
	if !store.Insert(room) {
		t.Fatalf("expected insert")
	}
	if store.Insert(app.NewRoom("ABCDEF", domain.Player{ID: "p2"})) {
		t.Fatalf("expected duplicate code to be rejected")
	}
	got, ok := store.Get("ABCDEF")
	if !ok || got != room {
		t.Fatalf("expected room present")
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 room, got %d", store.Len())
	}

	store.Delete("ABCDEF")
	if _, ok := store.Get("ABCDEF"); ok {
		t.Fatalf("expected room removed")
	}
}
