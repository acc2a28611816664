package combat

import (
	"context"
	"time"
)

// Heartbeat runs the advisory round timer until ctx is done. Every
// RoundDelay it hands a poll function to submit, which must execute it
// on the same serialized command stream that owns the sessions. The
// poll re-broadcasts the roster for fights stuck in Setup and re-runs
// the ready check; it never force-resolves anyone's action.
func (m *Manager) Heartbeat(ctx context.Context, submit func(func())) {
	ticker := time.NewTicker(m.settings.RoundDelay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			submit(m.pollSessions)
		}
	}
}

// pollSessions nudges every session sitting in Setup.
func (m *Manager) pollSessions() {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	for _, s := range sessions {
		if s.ended() || s.phase != PhaseSetup {
			continue
		}
		s.broadcast(s.Status())
		s.readyCheck()
	}
}
