package goja

import (
	"context"
	"strings"
	"testing"
)

func TestLoadAndCall(t *testing.T) {
	h := NewHandler()

	ok, err := h.Load("add", []string{`return parseInt(args[0]) + parseInt(args[1]);`})
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("Load declined valid object")
	}

	out, err := h.Call(context.Background(), "alice", "add", []string{"2", "3"})
	if err != nil {
		t.Fatal(err)
	}
	if out != "5" {
		t.Fatalf("got %q, want %q", out, "5")
	}
}

func TestCallSeesUserID(t *testing.T) {
	h := NewHandler()

	if _, err := h.Load("whoami", []string{`return rs.id;`}); err != nil {
		t.Fatal(err)
	}

	out, err := h.Call(context.Background(), "bob", "whoami", nil)
	if err != nil {
		t.Fatal(err)
	}
	if out != "bob" {
		t.Fatalf("got %q, want %q", out, "bob")
	}
}

func TestCallUnknownObject(t *testing.T) {
	h := NewHandler()

	out, err := h.Call(context.Background(), "alice", "nope", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Not Found") {
		t.Fatalf("got %q, want an Object Not Found error", out)
	}
}

func TestLoadCompileError(t *testing.T) {
	h := NewHandler()

	_, err := h.Load("broken", []string{`this is not valid javascript {{{`})
	if err == nil {
		t.Fatal("expected a compile error")
	}
}
