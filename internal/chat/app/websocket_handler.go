package app

import (
	"context"
	"time"

	"marketplace_chat_service/internal/chat/realtime"
	"marketplace_chat_service/internal/chat/session"
	"marketplace_chat_service/pkg/logger"
	"marketplace_chat_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const maxFrameSize = 64 * 1024

// WebsocketOptions per-connection tuning
type WebsocketOptions struct {
	HandshakeTimeout time.Duration
	PingInterval     time.Duration
	SendBuffer       int
}

// ChatWebsocketHandler bridges fiber websocket connections to sessions
type ChatWebsocketHandler struct {
	deps session.Deps
	hub  *realtime.Hub
	opts WebsocketOptions
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(deps session.Deps, hub *realtime.Hub, opts WebsocketOptions) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{deps: deps, hub: hub, opts: opts}
}

// HandleConnection websocket entry; the identity was resolved by JWTMiddleware before the upgrade
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, ws *websocket.Conn) {
	memberID, _ := ws.Locals(middlewares.TokenMemberID).(string)

	conn := realtime.NewConnection(memberID, ws, h.opts.SendBuffer, h.opts.PingInterval)
	h.hub.Attach(conn)
	conn.Start()

	sess := session.New(h.deps, conn)
	timer := sess.ArmHandshake(h.opts.HandshakeTimeout)

	defer func() {
		timer.Stop()
		sess.Close()
		h.hub.Detach(conn)
		// fiber recycles ws once this handler returns
		<-conn.Stopped()
		logger.Log.Info("websocket close", zap.String("conn", conn.ID), zap.String("member", memberID))
	}()

	ws.SetReadLimit(maxFrameSize)
	if h.opts.PingInterval > 0 {
		readWait := 2 * h.opts.PingInterval
		_ = ws.SetReadDeadline(time.Now().Add(readWait))
		// server ping -> client pong keeps the read deadline moving
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(readWait))
		})
	}

	if err := sess.Handle(ctx, session.Authenticate{Identity: memberID}); err != nil {
		return
	}
	timer.Stop()
	logger.Log.Info("websocket open", zap.String("conn", conn.ID), zap.String("member", memberID))

	for {
		mt, message, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Debug("connection closed", zap.String("conn", conn.ID), zap.Error(err))
			} else {
				logger.Log.Debug("websocket read error", zap.String("conn", conn.ID), zap.Error(err))
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		// one reader per connection: events apply in arrival order
		_ = sess.Dispatch(ctx, message)
	}
}
