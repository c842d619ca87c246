package noop

import (
	"context"
	"log"
)

// Handler is a MacroHandler that declines every Load and reports
// every Call as not found. It exists as a harmless default for a
// language name nothing registers a real handler for.
type Handler struct {
	// Silent, if true, will suppress warning log messages.
	Silent bool
}

// NewHandler makes a Handler.
func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Load(name string, codeLines []string) (bool, error) {
	if !h.Silent {
		log.Printf("warning: noop handler declining object %q", name)
	}
	return false, nil
}

func (h *Handler) Call(ctx context.Context, userID, name string, args []string) (string, error) {
	if !h.Silent {
		log.Printf("warning: noop handler called for object %q", name)
	}
	return "[ERR: Object Not Found]", nil
}
