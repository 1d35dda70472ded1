package heartbeat

import (
	"testing"

	"phrasewatch/pkg/phrasewatch/phrases"
)

func TestHeartbeatStart(t *testing.T) {
	t.Run("valid schedule starts and stops", func(t *testing.T) {
		h := New(phrases.NewRegistry(), nil)
		if err := h.Start("@every 1h"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		h.Stop()
	})

	t.Run("invalid schedule is an error", func(t *testing.T) {
		h := New(phrases.NewRegistry(), nil)
		if err := h.Start("not a schedule"); err == nil {
			t.Error("expected error for invalid schedule")
		}
	})
}
