package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/smartcart/smartcart-backend/api/responses"
	"github.com/smartcart/smartcart-backend/pkg/logger"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = (streamPongWait * 9) / 10
)

// CartStream upgrades to a websocket and pushes a cart snapshot on connect
// and after every change, including changes arriving from the shopper's
// remote list. Client messages are ignored.
func CartStream(allowedOrigins []string, logg *logger.Logger) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: originChecker(allowedOrigins),
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionFrom(w, r, logg)
		if !ok {
			return
		}

		// The stream outlives the request context once upgraded.
		ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
		defer cancel()

		snapshots, stop, err := sess.Cart.Watch(ctx)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, cartError(err))
			return
		}
		defer stop()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already written the HTTP error.
			if logg != nil {
				logg.Warn(logg.WithField(ctx, "error", err.Error()), "cart.stream.upgrade_failed")
			}
			return
		}
		defer conn.Close()

		if logg != nil {
			logg.Info(ctx, "cart.stream.opened")
			defer logg.Info(ctx, "cart.stream.closed")
		}

		go func() {
			defer cancel()
			conn.SetReadLimit(512)
			_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
			conn.SetPongHandler(func(string) error {
				return conn.SetReadDeadline(time.Now().Add(streamPongWait))
			})
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(streamPingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case snap, open := <-snapshots:
				_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
				if !open {
					// Engine closed: the session was evicted.
					_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
					return
				}
				if err := conn.WriteJSON(snap); err != nil {
					return
				}
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}
}

// originChecker admits requests without an Origin header and those from
// allowed. An empty list admits everything.
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if strings.EqualFold(strings.TrimSpace(o), origin) {
				return true
			}
		}
		return false
	}
}
