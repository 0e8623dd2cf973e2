package registry

import (
	"errors"
	"testing"

	"graminhealth/internal/chat"
)

func TestAddGetDelete(t *testing.T) {
	r := New()
	s := chat.NewSession(nil)
	id := r.Add(s)
	if id == "" {
		t.Fatal("empty id")
	}

	got, err := r.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != s {
		t.Error("Get returned a different session")
	}

	r.Delete(id)
	if _, err := r.Get(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete = %v, want ErrNotFound", err)
	}
	// Deleting again is a no-op.
	r.Delete(id)
}

func TestIDsAreUnique(t *testing.T) {
	r := New()
	a := r.Add(chat.NewSession(nil))
	b := r.Add(chat.NewSession(nil))
	if a == b {
		t.Errorf("duplicate ids: %q", a)
	}
	if r.Len() != 2 {
		t.Errorf("Len = %d, want 2", r.Len())
	}
}
