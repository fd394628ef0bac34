package policy

import (
	"log/slog"

	"github.com/reglet-dev/reglet-forms/entities"
)

// Ensure implementations satisfy the interface.
var (
	_ DenialHandler = (*SlogDenialHandler)(nil)
	_ DenialHandler = (*NopDenialHandler)(nil)
)

// SlogDenialHandler logs denials at debug level. A hidden component is a
// visibility decision, not a failure.
type SlogDenialHandler struct {
	Logger *slog.Logger
}

func (h *SlogDenialHandler) OnDenial(check string, subject entities.Subject, reason string) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("component hidden by capability gate",
		"check", check,
		"kind", subject.Kind(),
		"id", subject.ID(),
		"namespace", subject.Namespace().String(),
		"reason", reason)
}

// NopDenialHandler does nothing.
type NopDenialHandler struct{}

func (h *NopDenialHandler) OnDenial(check string, subject entities.Subject, reason string) {}
