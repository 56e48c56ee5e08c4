package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"nhooyr.io/websocket"

	"palettecore/core/events"
	"palettecore/core/types"
)

const wsWriteTimeout = 10 * time.Second

type eventPayload struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type payloadCarrier interface {
	Event() *types.Event
}

func payloadFrom(evt events.Event) eventPayload {
	if carrier, ok := evt.(payloadCarrier); ok {
		if inner := carrier.Event(); inner != nil {
			return eventPayload{Type: inner.Type, Attributes: inner.Attributes}
		}
	}
	return eventPayload{Type: evt.EventType()}
}

func (s *Server) handleEventsWS(w http.ResponseWriter, r *http.Request) {
	if s == nil || s.node == nil {
		http.Error(w, "node unavailable", http.StatusServiceUnavailable)
		return
	}
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "stream closed")
	if err := s.streamEvents(r.Context(), conn); err != nil {
		if status := websocket.CloseStatus(err); status == -1 {
			_ = conn.Close(websocket.StatusInternalError, "stream error")
		}
	}
}

func (s *Server) streamEvents(ctx context.Context, conn *websocket.Conn) error {
	updates, cancel := s.node.SubscribeEvents()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-updates:
			if !ok {
				return nil
			}
			if err := writeEvent(ctx, conn, evt); err != nil {
				return err
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, evt events.Event) error {
	data, err := json.Marshal(payloadFrom(evt))
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}
