package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gastosapp/gastos-backend/api/middleware"
	"github.com/gastosapp/gastos-backend/api/responses"
	"github.com/gastosapp/gastos-backend/internal/realtime"
	pkgerrors "github.com/gastosapp/gastos-backend/pkg/errors"
	"github.com/gastosapp/gastos-backend/pkg/logger"
)

const keepAliveInterval = 25 * time.Second

// StreamEvents serves the server-sent events feed. Clients reconnect on
// drop; the retry hint keeps that cheap.
func StreamEvents(hub *realtime.Broadcaster, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		events, unsubscribe := hub.Register()
		defer unsubscribe()
		middleware.SetRealtimeClients(hub.ClientCount())
		defer func() { middleware.SetRealtimeClients(hub.ClientCount()) }()

		fmt.Fprintf(w, "retry: 3000\n\n")
		fmt.Fprintf(w, "event: connected\ndata: {\"ts\":%d}\n\n", time.Now().UnixMilli())
		flusher.Flush()

		keepAlive := time.NewTicker(keepAliveInterval)
		defer keepAlive.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-keepAlive.C:
				fmt.Fprint(w, ":keep-alive\n\n")
				flusher.Flush()
			case ev, open := <-events:
				if !open {
					return
				}
				payload, err := json.Marshal(ev)
				if err != nil {
					if logg != nil {
						logg.Error(r.Context(), "realtime.encode_failed", err)
					}
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Event, payload)
				flusher.Flush()
			}
		}
	}
}
