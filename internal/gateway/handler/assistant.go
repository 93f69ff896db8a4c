package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"kisanmitra/internal/action"
	"kisanmitra/internal/types"
)

const (
	assistantWSWriteWait = 10 * time.Second
	assistantWSPongWait  = 60 * time.Second

	// maxHistoryTurns bounds the history sent back to the model.
	maxHistoryTurns = 20
)

var assistantWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type assistantWSInbound struct {
	Type     string `json:"type"`
	Query    string `json:"query,omitempty"`
	Language string `json:"language,omitempty"`
}

type assistantWSOutbound struct {
	Type    string                            `json:"type"`
	Result  *action.Result[types.AskAIOutput] `json:"result,omitempty"`
	Code    string                            `json:"code,omitempty"`
	Message string                            `json:"message,omitempty"`
}

// conversation is the history of one socket. Only answered turns are kept.
type conversation struct {
	language string
	turns    []types.ChatTurn
}

func (c *conversation) record(query, answer string) {
	c.turns = append(c.turns,
		types.ChatTurn{Role: types.RoleUser, Text: query},
		types.ChatTurn{Role: types.RoleAssistant, Text: answer},
	)
	if extra := len(c.turns) - maxHistoryTurns; extra > 0 {
		c.turns = append([]types.ChatTurn(nil), c.turns[extra:]...)
	}
}

// HandleAssistantWS carries askAI turns. ?language= sets the default
// language for the connection.
func (s *Service) HandleAssistantWS(w http.ResponseWriter, r *http.Request) {
	conn, err := assistantWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Pongs are only seen while reading, so the deadline is extended
	// again whenever the loop comes back from a slow turn.
	extend := func() error {
		return conn.SetReadDeadline(time.Now().Add(s.pongWait))
	}
	if err := extend(); err != nil {
		s.log.Warn("assistant ws set read deadline", zap.Error(err))
		return
	}
	conn.SetPongHandler(func(string) error { return extend() })

	writeCh := make(chan assistantWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(s.pongWait * 9 / 10)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(assistantWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(assistantWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	conv := &conversation{language: strings.TrimSpace(r.URL.Query().Get("language"))}
	pushAssistantWS(writeCh, assistantWSOutbound{Type: "ready"})

	for {
		var in assistantWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			pushAssistantWS(writeCh, assistantWSOutbound{Type: "pong"})
		case "reset":
			conv.turns = nil
			pushAssistantWS(writeCh, assistantWSOutbound{Type: "reset_ack"})
		case "ask":
			pushAssistantWS(writeCh, s.ask(ctx, conv, in))
			if err := extend(); err != nil {
				s.log.Warn("assistant ws set read deadline", zap.Error(err))
				cancel()
				<-writerDone
				return
			}
		case "":
			pushAssistantWS(writeCh, assistantWSOutbound{Type: "error", Code: "invalid_argument", Message: "type is required"})
		default:
			pushAssistantWS(writeCh, assistantWSOutbound{Type: "error", Code: "invalid_argument", Message: "unsupported type: " + in.Type})
		}
	}
}

func (s *Service) ask(ctx context.Context, conv *conversation, in assistantWSInbound) assistantWSOutbound {
	lang := strings.TrimSpace(in.Language)
	if lang == "" {
		lang = conv.language
	}
	raw, err := json.Marshal(types.AskAIInput{Query: in.Query, Language: lang, History: conv.turns})
	if err != nil {
		return assistantWSOutbound{Type: "error", Code: "internal", Message: err.Error()}
	}
	res := s.gate.AskAI(ctx, raw)
	if res.Success {
		conv.record(strings.TrimSpace(in.Query), res.Data.Answer)
	}
	return assistantWSOutbound{Type: "answer", Result: &res}
}

func pushAssistantWS(writeCh chan assistantWSOutbound, out assistantWSOutbound) {
	if writeCh == nil {
		return
	}
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
