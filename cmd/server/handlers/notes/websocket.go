package notes

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"noteshare/cmd/server/ctxkeys"
	"noteshare/cmd/server/handlers/httperr"
	"noteshare/cmd/server/middlewares"
	"noteshare/internal/logger"
	"noteshare/internal/services/notes"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	// WSClosePolicyViolation is sent when the session outlives its limit
	WSClosePolicyViolation = 1008

	wsWriteTimeout     = 10 * time.Second
	wsPingInterval     = 25 * time.Second
	wsPingWriteTimeout = 5 * time.Second
)

var (
	errMissingToken = httperr.E{Status: fiber.StatusUnauthorized, Message: "Missing token"}
	errInvalidToken = httperr.E{Status: fiber.StatusUnauthorized, Message: "Invalid token"}
	errUpgrade      = httperr.E{Status: fiber.StatusUpgradeRequired, Message: "WebSocket upgrade required"}
)

// Hub is the live feed fan-out the stream subscribes to
type Hub interface {
	Subscribe(connULID ulid.ULID, userID bson.ObjectID) (*notes.Subscriber, func())
}

// FeedEvent is one message on the live feed stream
type FeedEvent struct {
	Type string `json:"type" example:"created"`
	Note any    `json:"note"`
}

// WebSocketHandlers serves the live feed stream
type WebSocketHandlers struct {
	hub        Hub
	secret     string
	maxSession time.Duration
}

// NewWebSocketHandlers creates the stream handlers. Tokens are checked against secret.
func NewWebSocketHandlers(hub Hub, secret string, maxSessionSec int) *WebSocketHandlers {
	return &WebSocketHandlers{
		hub:        hub,
		secret:     secret,
		maxSession: time.Duration(maxSessionSec) * time.Second,
	}
}

// WSUpgrade authenticates the ?token= query parameter before the upgrade
// @Summary Live feed events
// @Description Upgrades to a WebSocket that receives created, updated and deleted note events.
// @Tags feed
// @Param token query string true "Access token"
// @Success 101
// @Failure 401 {object} httperr.E
// @Failure 426 {object} httperr.E
// @Router /ws/feed/stream [get]
func (h *WebSocketHandlers) WSUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		logger.L().Info("websocket upgrade required", "handler", "WSUpgrade", "path", c.Path())
		return httperr.Fail(errUpgrade)
	}

	token := c.Query("token")
	if token == "" {
		logger.L().Warn("missing token in websocket upgrade", "handler", "WSUpgrade", "ip", c.IP())
		return httperr.Fail(errMissingToken)
	}

	id, err := h.validateJWT(token)
	if err != nil {
		logger.L().Warn("invalid token in websocket upgrade", "handler", "WSUpgrade", "ip", c.IP(), "error", err)
		return httperr.Fail(errInvalidToken)
	}

	logger.L().Info("websocket upgrade", "ip", c.IP(), "user_id", id.UserID)

	c.Locals(ctxkeys.UserIDKey, id.UserID)
	c.Locals(ctxkeys.UsernameKey, id.Username)
	c.Locals(ctxkeys.ParentCtxKey, c.UserContext())

	return c.Next()
}

// validateJWT verifies an HS256 token and returns its identity claims
func (h *WebSocketHandlers) validateJWT(tokenString string) (middlewares.Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(h.secret), nil
	})
	if err != nil {
		return middlewares.Identity{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return middlewares.Identity{}, errors.New("invalid claims")
	}

	id, err := middlewares.IdentityFromClaims(claims)
	if err != nil {
		return middlewares.Identity{}, err
	}
	if _, err := bson.ObjectIDFromHex(id.UserID); err != nil {
		return middlewares.Identity{}, fmt.Errorf("invalid user_id: %w", err)
	}
	return id, nil
}

// wsConnection holds connection-specific data
type wsConnection struct {
	conn   *websocket.Conn
	userID bson.ObjectID
	id     ulid.ULID
}

func (w *wsConnection) logArgs(args ...any) []any {
	return append(args, "user_id", w.userID.Hex(), "conn_id", w.id.String())
}

// WSFeedStream pushes feed events until the client leaves or the session expires
func (h *WebSocketHandlers) WSFeedStream(c *websocket.Conn) {
	conn, parentCtx, err := newWSConnection(c)
	if err != nil {
		logger.L().Error("rejecting websocket connection", "error", err)
		_ = c.Close()
		return
	}

	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sub, unsubscribe := h.hub.Subscribe(conn.id, conn.userID)
	defer unsubscribe()

	logger.L().Info("websocket connection established", conn.logArgs()...)

	session := time.AfterFunc(h.maxSession, func() {
		logger.L().Info("websocket session timeout", conn.logArgs()...)
		msg := websocket.FormatCloseMessage(WSClosePolicyViolation, "session timeout")
		if err := c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteTimeout)); err != nil {
			logger.L().Warn("failed to send close message", conn.logArgs("error", err)...)
		}
		_ = c.Close()
		cancel()
	})
	defer session.Stop()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	go conn.writeLoop(ctx, sub, ping.C)

	conn.readLoop()
	logger.L().Info("websocket connection closed", conn.logArgs()...)
}

func newWSConnection(c *websocket.Conn) (*wsConnection, context.Context, error) {
	userIDStr, ok := c.Locals(ctxkeys.UserIDKey).(string)
	if !ok {
		return nil, nil, errors.New(ctxkeys.UserIDKey + " not found")
	}
	userID, err := bson.ObjectIDFromHex(userIDStr)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid %s: %w", ctxkeys.UserIDKey, err)
	}
	parentCtx, ok := c.Locals(ctxkeys.ParentCtxKey).(context.Context)
	if !ok {
		return nil, nil, errors.New(ctxkeys.ParentCtxKey + " not found")
	}

	return &wsConnection{
		conn:   c,
		userID: userID,
		id:     ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader),
	}, parentCtx, nil
}

// writeLoop owns all data writes on the connection
func (w *wsConnection) writeLoop(ctx context.Context, sub *notes.Subscriber, ping <-chan time.Time) {
	defer func() {
		if r := recover(); r != nil {
			logger.L().Error("panic in websocket sender", w.logArgs("error", r)...)
		}
	}()

	for {
		select {
		case ev, ok := <-sub.Ch:
			if !ok {
				return
			}
			if err := w.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
			if err := w.conn.WriteJSON(toFeedEvent(ev)); err != nil {
				logger.L().Warn("failed to write websocket message", w.logArgs("error", err)...)
				return
			}
		case <-ping:
			if err := w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsPingWriteTimeout)); err != nil {
				logger.L().Warn("failed to write ping", w.logArgs("error", err)...)
				return
			}
		case <-sub.Done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// readLoop drains client frames until the connection closes
func (w *wsConnection) readLoop() {
	for {
		if _, _, err := w.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.L().Warn("websocket read error", w.logArgs("error", err)...)
			}
			return
		}
	}
}

// toFeedEvent trims deleted events down to the note id
func toFeedEvent(ev notes.NoteEvent) FeedEvent {
	if ev.Type == notes.EventDeleted {
		return FeedEvent{Type: ev.Type, Note: fiber.Map{"id": ev.Note.ID.Hex()}}
	}
	return FeedEvent{Type: ev.Type, Note: ev.Note}
}
