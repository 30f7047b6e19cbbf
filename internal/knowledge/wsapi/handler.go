package wsapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"nhooyr.io/websocket"       //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
	"nhooyr.io/websocket/wsjson" //nolint:staticcheck // TODO: migrate to github.com/coder/websocket

	"github.com/scrypster/kbbridge/internal/knowledge"
)

// Handler upgrades requests to websocket connections and answers request
// frames from a knowledge.Service. Frames on one connection are answered
// in order.
type Handler struct {
	svc            knowledge.Service
	logger         *zap.Logger
	originPatterns []string
}

// NewHandler creates a websocket handler for svc. originPatterns restrict
// cross-origin upgrades; nil allows same-origin only.
func NewHandler(svc knowledge.Service, logger *zap.Logger, originPatterns ...string) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger, originPatterns: originPatterns}
}

// ServeHTTP handles websocket upgrade requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{ //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(maxFrameBytes)
	defer conn.Close(websocket.StatusInternalError, "") //nolint:errcheck,staticcheck

	h.serve(r.Context(), conn)
}

func (h *Handler) serve(ctx context.Context, conn *websocket.Conn) { //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
	for {
		var req requestFrame
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			var closeErr websocket.CloseError //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
			if !errors.As(err, &closeErr) && ctx.Err() == nil {
				h.logger.Debug("websocket read ended", zap.Error(err))
			}
			return
		}

		resp := h.answer(ctx, req)
		if err := wsjson.Write(ctx, conn, resp); err != nil {
			h.logger.Warn("websocket write failed", zap.Uint64("id", req.ID), zap.Error(err))
			return
		}
	}
}

func (h *Handler) answer(ctx context.Context, req requestFrame) responseFrame {
	resp := responseFrame{ID: req.ID}

	result, err := knowledge.Dispatch(ctx, h.svc, req.Method, req.Params)
	if err == nil {
		resp.Result, err = json.Marshal(result)
	}
	if err != nil {
		code := knowledge.ErrorCode(err)
		h.logger.Warn("knowledge base call failed",
			zap.String("method", req.Method), zap.String("code", code), zap.Error(err))
		resp.Result = nil
		resp.Error = &knowledge.ErrorResponse{Error: err.Error(), Code: code}
	}
	return resp
}
