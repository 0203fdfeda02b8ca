package adapthttp

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

// handleLive holds a websocket open and writes a heartbeat every s.heartbeat.
// Clients treat an open connection as "server reachable".
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Debug("live upgrade failed", "error", err)
		return
	}
	defer c.CloseNow()

	// Inbound messages are ignored; CloseRead still processes close frames.
	ctx := c.CloseRead(r.Context())

	t := time.NewTicker(s.heartbeat)
	defer t.Stop()

	for {
		msg, _ := json.Marshal(map[string]any{"type": "heartbeat", "time": time.Now().UTC()})
		if err := c.Write(ctx, websocket.MessageText, msg); err != nil {
			return
		}
		select {
		case <-ctx.Done():
			c.Close(websocket.StatusNormalClosure, "")
			return
		case <-t.C:
		}
	}
}
