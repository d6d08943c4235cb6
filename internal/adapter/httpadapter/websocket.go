package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/couchcryptid/hazard-map/internal/session"
)

// WSHandler bridges a browser map renderer to the session: map events and UI
// actions come in, session updates go out.
type WSHandler struct {
	sess   MapSession
	logger *slog.Logger
}

func NewWSHandler(sess MapSession, logger *slog.Logger) *WSHandler {
	return &WSHandler{sess: sess, logger: logger}
}

// WSMessage is the envelope for both directions.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound message types.
const (
	msgEvent            = "event"
	msgEnterReporting   = "enterReporting"
	msgCancelReporting  = "cancelReporting"
	msgSelectHazardType = "selectHazardType"
	msgSetNotes         = "setNotes"
	msgSubmit           = "submit"
	msgLogin            = "login"
	msgLogout           = "logout"
	msgRefresh          = "refresh"
	msgPing             = "ping"
)

type selectHazardTypePayload struct {
	Value string `json:"value"`
}

type setNotesPayload struct {
	Text string `json:"text"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type submittedPayload struct {
	LocalID string `json:"localId"`
}

func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}

	clientID := uuid.New().String()
	bus := h.sess.Updates()
	updates := bus.Subscribe()
	h.logger.Info("renderer connected", "client_id", clientID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	out := make(chan session.Update, 16)
	out <- session.Update{Kind: session.UpdateState, Payload: h.sess.State()}
	out <- session.Update{Kind: session.UpdateLayers, Payload: h.sess.Layers()}

	go h.writeLoop(ctx, conn, clientID, updates, out)

	h.readLoop(ctx, conn, clientID, out)
	bus.Unsubscribe(updates)
	h.logger.Info("renderer disconnected", "client_id", clientID)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, clientID string, out chan<- session.Update) {
	defer conn.Close(websocket.StatusNormalClosure, "")

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				h.logger.Debug("websocket read error", "client_id", clientID, "error", err)
			}
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Debug("invalid message format", "client_id", clientID, "error", err)
			continue
		}

		reply, err := h.dispatch(ctx, msg)
		if err != nil {
			h.logger.Debug("websocket action failed", "client_id", clientID, "type", msg.Type, "error", err)
			reply = &session.Update{Kind: "error", Payload: errorPayload{Message: err.Error()}}
		}
		if reply != nil {
			select {
			case out <- *reply:
			default:
				h.logger.Debug("reply dropped, buffer full", "client_id", clientID)
			}
		}
	}
}

// dispatch runs one inbound message against the session. A non-nil Update is
// sent back to the sender only.
func (h *WSHandler) dispatch(ctx context.Context, msg WSMessage) (*session.Update, error) {
	switch msg.Type {
	case msgEvent:
		var ev session.Event
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		err := h.sess.Handle(ctx, ev)
		if errors.Is(err, session.ErrNoHandler) {
			// Events before load are expected and dropped.
			return nil, nil
		}
		return nil, err

	case msgEnterReporting:
		return nil, h.sess.EnterReporting()

	case msgCancelReporting:
		h.sess.CancelReporting()
		return nil, nil

	case msgSelectHazardType:
		var p selectHazardTypePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		h.sess.SelectHazardType(p.Value)
		return nil, nil

	case msgSetNotes:
		var p setNotesPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		h.sess.SetNotes(p.Text)
		return nil, nil

	case msgSubmit:
		sub, err := h.sess.Submit(ctx)
		if err != nil {
			return nil, err
		}
		return &session.Update{Kind: "submitted", Payload: submittedPayload{LocalID: sub.LocalID}}, nil

	case msgLogin:
		return nil, h.sess.Login(ctx)

	case msgLogout:
		return nil, h.sess.Logout(ctx)

	case msgRefresh:
		return nil, h.sess.Refresh(ctx)

	case msgPing:
		return &session.Update{Kind: "pong"}, nil

	default:
		return nil, fmt.Errorf("unknown message type %q", msg.Type)
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, clientID string, updates <-chan session.Update, replies <-chan session.Update) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		var u session.Update
		select {
		case <-ctx.Done():
			return

		case r := <-replies:
			u = r

		case b, ok := <-updates:
			if !ok {
				return
			}
			u = b

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
			continue
		}

		data, err := json.Marshal(u)
		if err != nil {
			h.logger.Warn("encode update failed", "client_id", clientID, "type", u.Kind, "error", err)
			continue
		}
		writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = conn.Write(writeCtx, websocket.MessageText, data)
		cancel()
		if err != nil {
			return
		}
	}
}
