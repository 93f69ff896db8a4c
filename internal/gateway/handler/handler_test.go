package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kisanmitra/internal/action"
	"kisanmitra/internal/flow"
	"kisanmitra/internal/gateway/repository/runlog"
	"kisanmitra/internal/llm"
	"kisanmitra/internal/types"
)

func TestProcedure(t *testing.T) {
	assert.Equal(t, "/kisanmitra.v1.FlowService/AskAI", Procedure(types.FlowAskAI))
	assert.Equal(t, "/kisanmitra.v1.FlowService/GetCropRecommendations", Procedure(" getCropRecommendations "))
}

func TestJSONCodec(t *testing.T) {
	c := jsonCodec{}
	assert.Equal(t, "json", c.Name())

	var raw json.RawMessage
	require.NoError(t, c.Unmarshal([]byte(`{"query":"hi"}`), &raw))
	assert.JSONEq(t, `{"query":"hi"}`, string(raw))
	assert.Error(t, c.Unmarshal([]byte(`{"query":`), &raw))

	b, err := c.Marshal(action.Fail[types.AskAIOutput]("Please enter a question.").Any())
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"Please enter a question."}`, string(b))
}

func TestConversationKeepsRecentTurns(t *testing.T) {
	c := &conversation{}
	for i := 0; i < maxHistoryTurns; i++ {
		c.record(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}
	require.Len(t, c.turns, maxHistoryTurns)
	assert.Equal(t, types.ChatTurn{Role: types.RoleUser, Text: fmt.Sprintf("q%d", maxHistoryTurns/2)}, c.turns[0])
	last := c.turns[len(c.turns)-1]
	assert.Equal(t, types.ChatTurn{Role: types.RoleAssistant, Text: fmt.Sprintf("a%d", maxHistoryTurns-1)}, last)
}

func TestAssistantSocketSurvivesSlowAnswer(t *testing.T) {
	var calls atomic.Int32
	model := &llm.ScriptedModel{Respond: func(string, *llm.Request) (*llm.Response, error) {
		n := calls.Add(1)
		if n == 1 {
			time.Sleep(400 * time.Millisecond)
		}
		return &llm.Response{Text: fmt.Sprintf(`{"answer":"answer %d"}`, n)}, nil
	}}
	gate := action.NewGate(flow.New(model, flow.Options{}), action.Options{})
	svc := NewService(gate, runlog.NewMemoryStore(10), nil, nil, nil)
	svc.pongWait = 150 * time.Millisecond

	srv := httptest.NewServer(BuildMux(svc))
	defer srv.Close()
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/assistant?language=en", nil)
	require.NoError(t, err)
	resp.Body.Close()
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var out assistantWSOutbound
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "ready", out.Type)

	for i, want := range []string{"answer 1", "answer 2"} {
		require.NoError(t, conn.WriteJSON(assistantWSInbound{Type: "ask", Query: "Is it time to harvest?"}), i)
		out = assistantWSOutbound{}
		require.NoError(t, conn.ReadJSON(&out), i)
		require.Equal(t, "answer", out.Type)
		require.NotNil(t, out.Result)
		assert.Equal(t, want, out.Result.Data.Answer)
	}
}

func TestMediaDebugWithoutArchive(t *testing.T) {
	svc := NewService(action.NewGate(flow.New(&llm.ScriptedModel{}, flow.Options{}), action.Options{}), runlog.NewMemoryStore(1), nil, nil, nil)
	rec := httptest.NewRecorder()
	svc.HandleMedia(rec, httptest.NewRequest(http.MethodGet, "/debug/media?prefix=carbon/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
