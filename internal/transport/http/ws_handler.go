package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service         *app.QuizService
	defaultQuestion string
	upgrader        websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, defaultQuestion string) *WSHandler {
	return &WSHandler{
		service:         service,
		defaultQuestion: defaultQuestion,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	OptionID string `json:"optionId"`
}

type nextPayload struct {
	QuestionID string `json:"questionId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets; each connection plays one session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	questionID := query.Get("questionId")
	if questionID == "" {
		questionID = h.defaultQuestion
	}
	if questionID == "" {
		http.Error(w, "missing questionId", http.StatusBadRequest)
		return
	}
	location := query.Get("location")
	if location == "" {
		location = r.Referer()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	started, err := h.service.Start(r.Context(), app.StartRequest{
		QuestionID: questionID,
		UserID:     query.Get("userId"),
		DeviceID:   query.Get("deviceId"),
		Location:   location,
	})
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	sessionID := started.SessionID
	// Ending the session stops its countdown; the request context is gone by then.
	defer h.service.End(context.Background(), sessionID)

	updates, cancel, err := h.service.Subscribe(r.Context(), sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	out := newOutbox(16, func(msg outboundMessage[any]) error { return conn.WriteJSON(msg) })
	closeSignals := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				if !out.pushUntil(outboundMessage[any]{Type: "state", Payload: update}, closeSignals) {
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	// A failed write leaves the read loop free to return and end the session.
	if out.push(outboundMessage[any]{Type: "started", Payload: started}) {
		for {
			var inbound inboundMessage
			if err := conn.ReadJSON(&inbound); err != nil {
				break
			}
			msg := outboundMessage[any]{Type: "state"}
			view, err := h.dispatch(r.Context(), sessionID, inbound)
			if err != nil {
				msg = outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			} else {
				msg.Payload = view
			}
			if !out.push(msg) {
				break
			}
		}
	}

	close(closeSignals)
	<-updatesDone
	out.close()
}

var errUnsupportedMessage = errors.New("unsupported message type")

func (h *WSHandler) dispatch(ctx context.Context, sessionID string, inbound inboundMessage) (domain.View, error) {
	switch inbound.Type {
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return domain.View{}, errors.New("invalid select payload")
		}
		return h.service.Select(ctx, sessionID, payload.OptionID)
	case "submit":
		return h.service.Submit(ctx, sessionID)
	case "reset":
		return h.service.Reset(ctx, sessionID)
	case "next":
		var payload nextPayload
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				return domain.View{}, errors.New("invalid next payload")
			}
		}
		return h.service.Next(ctx, sessionID, payload.QuestionID)
	case "state":
		return h.service.State(ctx, sessionID)
	default:
		return domain.View{}, errUnsupportedMessage
	}
}
