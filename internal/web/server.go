// Package web serves a live view of the decoder: a websocket event feed,
// the traffic table, stream counters and recent logs.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	"gdl90rx/internal/traffic"
)

// Deps are the live objects the monitor reads from. Nil Status and Hub are
// replaced with empty ones.
type Deps struct {
	Status  *Status
	Traffic *traffic.Store
	Hub     *Hub
	Logs    *LogBuffer
	Logger  zerolog.Logger
}

func writeJSON(w http.ResponseWriter, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(b)
	_, _ = w.Write([]byte("\n"))
}

// Handler returns the monitor router.
func Handler(d Deps) http.Handler {
	if d.Status == nil {
		d.Status = NewStatus()
	}
	if d.Hub == nil {
		d.Hub = NewHub()
	}

	router := httprouter.New()

	router.GET("/", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		snap := d.Status.Snapshot(time.Now().UTC())
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = fmt.Fprintf(w, "gdl90rx\ninput=%s\nmessages=%d\nchecksum_errors=%d\n\n",
			snap.Input, snap.Stats.Messages, snap.Stats.ChecksumErrors)
		_, _ = fmt.Fprintf(w, "GET /api/status\nGET /api/stats\nGET /api/traffic\nGET /api/ownship\nGET /api/logs\nGET /ws\n")
	})

	router.GET("/api/status", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		snap := d.Status.Snapshot(time.Now().UTC())
		snap.Clients = d.Hub.Clients()
		snap.Dropped = d.Hub.Dropped()
		writeJSON(w, snap)
	})

	router.GET("/api/stats", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(w, d.Status.Stats())
	})

	router.GET("/api/traffic", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		now := time.Now().UTC()
		var targets []traffic.Target
		if r.URL.Query().Get("all") == "1" {
			targets = d.Traffic.SnapshotAll(now)
		} else {
			targets = d.Traffic.Snapshot(now)
		}
		if targets == nil {
			targets = []traffic.Target{}
		}
		writeJSON(w, targets)
	})

	router.GET("/api/ownship", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		o, ok := d.Traffic.Ownship(time.Now().UTC())
		if !ok {
			http.Error(w, "no ownship", http.StatusNotFound)
			return
		}
		writeJSON(w, o)
	})

	router.GET("/api/logs", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if d.Logs == nil {
			http.Error(w, "logs unavailable", http.StatusNotFound)
			return
		}
		tail := 200
		if s := strings.TrimSpace(r.URL.Query().Get("tail")); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil || v < 1 || v > 5000 {
				http.Error(w, "tail must be an integer in [1,5000]", http.StatusBadRequest)
				return
			}
			tail = v
		}
		lines, dropped := d.Logs.Snapshot(tail)
		if strings.EqualFold(r.URL.Query().Get("format"), "text") {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Cache-Control", "no-store")
			if dropped > 0 {
				_, _ = fmt.Fprintf(w, "[dropped=%d]\n", dropped)
			}
			for _, line := range lines {
				_, _ = fmt.Fprintln(w, line)
			}
			return
		}
		writeJSON(w, LogsResponse{
			NowUTC:  time.Now().UTC().Format(time.RFC3339Nano),
			Dropped: dropped,
			Lines:   lines,
		})
	})

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	router.GET("/ws", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			d.Logger.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}
		serveClient(conn, d.Hub, d.Logger)
	})

	return router
}

// serveClient pumps hub events to one websocket connection until either
// side goes away.
func serveClient(conn *websocket.Conn, hub *Hub, logger zerolog.Logger) {
	id, ch := hub.Subscribe(64)
	logger.Info().Int("clients", hub.Clients()).Msg("websocket client connected")

	go func() {
		defer conn.Close()
		for msg := range ch {
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				hub.Unsubscribe(id)
				break
			}
		}
	}()

	go func() {
		defer func() {
			hub.Unsubscribe(id)
			logger.Info().Int("clients", hub.Clients()).Msg("websocket client disconnected")
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Serve runs the monitor on listenAddr until ctx is done.
func Serve(ctx context.Context, listenAddr string, d Deps) error {
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           Handler(d),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       30 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MiB
	}

	errCh := make(chan error, 1)
	go func() {
		d.Logger.Info().Str("listen", listenAddr).Msg("web monitor listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
