package session

import (
	"path/filepath"
	"testing"
)

func TestBoltManagerPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	b, err := OpenBoltManager(path)
	if err != nil {
		t.Fatal(err)
	}
	b.Set("frank", map[string]string{"mood": "curious"})
	b.AddHistory("frank", "hi", "hello")
	b.SetLastMatch("frank", "hi")
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	b2, err := OpenBoltManager(path)
	if err != nil {
		t.Fatal(err)
	}
	defer b2.Close()

	if v, ok := b2.Get("frank", "mood"); !ok || v != "curious" {
		t.Fatalf("got %q, %v", v, ok)
	}
	input, _ := b2.GetHistory("frank")
	if input.Get(1) != "hi" {
		t.Fatalf("got %q", input.Get(1))
	}
	if b2.GetLastMatch("frank") != "hi" {
		t.Fatalf("got %q", b2.GetLastMatch("frank"))
	}
}

func TestBoltManagerFreezeThaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	b, err := OpenBoltManager(path)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	b.Set("grace", map[string]string{"mood": "happy"})
	b.Freeze("grace")
	b.Set("grace", map[string]string{"mood": "sad"})

	b.Thaw("grace", Thaw)
	if v, _ := b.Get("grace", "mood"); v != "happy" {
		t.Fatalf("got %q", v)
	}
}
