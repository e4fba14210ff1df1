package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Snoop111/creative-ai-studio-demo/internal/domain"
	"github.com/Snoop111/creative-ai-studio-demo/internal/progress"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS middleware; the websocket
	// endpoint accepts any origin that got this far.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Progress streams job updates over a websocket. The client receives the
// current snapshot immediately, then live updates until the job reaches a
// terminal state or the client disconnects.
func (a *App) Progress(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return
	}
	view, err := a.Resolver.Resolve(r.Context(), jobID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "job not found")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.Logger.Warn().Err(err).Str("job_id", jobID).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sub := a.Hub.Subscribe(jobID)
	defer a.Hub.Unsubscribe(sub)

	// Discard client frames but notice the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	snapshot := progress.Update{
		JobID:     view.JobID,
		Status:    string(view.Status),
		Progress:  view.Progress,
		Message:   view.Message,
		Timestamp: time.Now().UTC(),
	}
	if err := writeUpdate(conn, snapshot); err != nil {
		return
	}
	if terminalStatus(snapshot.Status) {
		return
	}

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()
	for {
		select {
		case update, ok := <-sub.Updates():
			if !ok {
				return
			}
			if err := writeUpdate(conn, update); err != nil {
				return
			}
			if terminalStatus(update.Status) {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func writeUpdate(conn *websocket.Conn, update progress.Update) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(update)
}

func terminalStatus(status string) bool {
	return domain.JobState(status).Terminal()
}
