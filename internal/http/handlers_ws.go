package http

import (
	"net/http"

	"budgetly/internal/log"
)

// handleProgressSocket upgrades the connection and registers it with the hub
// under the authenticated owner. The client re-fetches progress whenever it
// receives a progress_changed event.
func (s *Server) handleProgressSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		NotFoundError("live updates not enabled").Write(w)
		return
	}

	owner := ownerFromContext(r.Context())

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WarnContext(r.Context(), "WebSocket upgrade failed",
			log.FieldOwner, owner,
			log.FieldError, err)
		return
	}

	s.hub.RegisterClient(conn, owner)

	// Drain client frames so pings are answered; unregister on close.
	go func() {
		defer s.hub.UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
