package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"nhooyr.io/websocket"
)

const (
	requestReadTimeout = 30 * time.Second
	frameWriteTimeout  = 10 * time.Second
)

// StreamFrame is one server message on the screening stream
type StreamFrame struct {
	Type    string      `json:"type"` // progress, result or error
	Percent float64     `json:"percent,omitempty"`
	Status  int         `json:"status,omitempty"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// HandleStream handles GET /api/screening/stream. The client sends one
// RunRequest; the server answers with progress frames and a final result
// (or error) frame, then closes.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "unexpected exit")

	ctx := r.Context()

	readCtx, cancel := context.WithTimeout(ctx, requestReadTimeout)
	msgType, message, err := conn.Read(readCtx)
	cancel()
	if err != nil {
		h.log.Debug().Err(err).Msg("No screening request received")
		conn.Close(websocket.StatusPolicyViolation, "expected a screening request")
		return
	}
	if msgType != websocket.MessageText {
		conn.Close(websocket.StatusUnsupportedData, "expected a JSON text message")
		return
	}

	var body RunRequest
	if err := json.Unmarshal(message, &body); err != nil {
		h.writeFrame(ctx, conn, StreamFrame{Type: "error", Status: http.StatusBadRequest, Error: "invalid request body"})
		conn.Close(websocket.StatusNormalClosure, "")
		return
	}
	req, err := body.ToRequest()
	if err != nil {
		h.writeFrame(ctx, conn, StreamFrame{Type: "error", Status: http.StatusBadRequest, Error: err.Error()})
		conn.Close(websocket.StatusNormalClosure, "")
		return
	}

	run, err := h.runner.Run(ctx, req, func(percent float64) {
		h.writeFrame(ctx, conn, StreamFrame{Type: "progress", Percent: percent})
	})
	if err != nil {
		h.writeFrame(ctx, conn, StreamFrame{Type: "error", Status: StatusFor(err), Error: err.Error()})
		conn.Close(websocket.StatusNormalClosure, "")
		return
	}

	h.writeFrame(ctx, conn, StreamFrame{Type: "result", Data: run})
	conn.Close(websocket.StatusNormalClosure, "")
}

func (h *Handler) writeFrame(ctx context.Context, conn *websocket.Conn, frame StreamFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to encode stream frame")
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, frameWriteTimeout)
	defer cancel()
	if err := conn.Write(writeCtx, websocket.MessageText, data); err != nil {
		if !errors.Is(err, context.Canceled) {
			h.log.Debug().Err(err).Str("frame", frame.Type).Msg("Failed to write stream frame")
		}
	}
}
