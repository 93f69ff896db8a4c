package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kisanmitra/internal/gateway/config"
	"kisanmitra/internal/gateway/handler"
	"kisanmitra/internal/llm"
	"kisanmitra/internal/types"
)

var fixedNow = func() time.Time { return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC) }

func testConfig() *config.Config {
	return &config.Config{
		Port:     ":0",
		Env:      "test",
		LogLevel: "debug",
		LLM:      config.LLMConfig{Provider: "fake", MaxAttempts: 1, MaxToolIters: 4},
		Flow:     config.FlowConfig{FanoutLimit: 4},
		RunLog:   config.RunLogConfig{Capacity: 50},
	}
}

// newTestServer serves the app over httptest. The scripted model answers
// like the offline backend and records every request.
func newTestServer(t *testing.T) (*httptest.Server, *llm.ScriptedModel) {
	t.Helper()
	fake := llm.NewFakeClient(fixedNow)
	scripted := &llm.ScriptedModel{Respond: func(flow string, req *llm.Request) (*llm.Response, error) {
		return fake.Generate(llm.WithFlow(context.Background(), flow), req)
	}}
	a, err := New(context.Background(), testConfig(), nil, Options{Model: scripted, Now: fixedNow})
	require.NoError(t, err)
	srv := httptest.NewServer(a.Handler())
	t.Cleanup(func() {
		srv.Close()
		require.NoError(t, a.Close())
	})
	return srv, scripted
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func callFlow(t *testing.T, srv *httptest.Server, flow, body string) envelope {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, srv.URL+handler.Procedure(flow), strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Connect-Protocol-Version", "1")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return env
}

func getJSON(t *testing.T, srv *httptest.Server, path string, v any) {
	t.Helper()
	resp, err := srv.Client().Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestMarketPriceOverConnect(t *testing.T) {
	srv, _ := newTestServer(t)
	env := callFlow(t, srv, types.FlowGetMarketPrice, `{"crop":"Onion","mandi":"Lasalgaon","language":"mr"}`)
	require.True(t, env.Success, env.Error)

	var out types.GetMarketPriceOutput
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Positive(t, out.Price)
	assert.Len(t, out.PriceHistory, types.PriceHistoryDays)
	assert.Equal(t, "2024-06-01", out.PriceHistory[len(out.PriceHistory)-1].Date)
}

func TestInvalidInputOverConnect(t *testing.T) {
	srv, scripted := newTestServer(t)
	env := callFlow(t, srv, types.FlowGetMarketPrice, `{"mandi":"Lasalgaon","language":"mr"}`)
	assert.False(t, env.Success)
	assert.Equal(t, "Crop name is required.", env.Error)
	assert.Zero(t, scripted.CallCount(""))

	env = callFlow(t, srv, types.FlowAskAI, `{}`)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)
}

func TestHealthAndFlowList(t *testing.T) {
	srv, _ := newTestServer(t)

	var health map[string]bool
	getJSON(t, srv, "/healthz", &health)
	assert.True(t, health["ok"])

	var list struct {
		Flows []struct {
			Name      string `json:"name"`
			Procedure string `json:"procedure"`
		} `json:"flows"`
	}
	getJSON(t, srv, "/v1/flows", &list)
	require.Len(t, list.Flows, len(types.Flows))
	assert.Equal(t, "/kisanmitra.v1.FlowService/DiagnoseCropDisease", list.Flows[0].Procedure)
}

func TestFlowRunsDebug(t *testing.T) {
	srv, _ := newTestServer(t)
	callFlow(t, srv, types.FlowAskAI, `{"query":"When to sow mustard?","language":"hi"}`)
	callFlow(t, srv, types.FlowGetMarketPrice, `{"crop":"Onion","language":"mr"}`)

	var body struct {
		Runs []struct {
			Flow  string   `json:"flow"`
			State string   `json:"state"`
			Trail []string `json:"trail"`
		} `json:"runs"`
		Usage map[string]llm.FlowUsage `json:"usage"`
	}
	getJSON(t, srv, "/debug/flow-runs?limit=10", &body)
	require.Len(t, body.Runs, 2)
	assert.Equal(t, types.FlowGetMarketPrice, body.Runs[0].Flow)
	assert.Equal(t, "rejected", body.Runs[0].State)
	assert.Equal(t, types.FlowAskAI, body.Runs[1].Flow)
	assert.Equal(t, "returned", body.Runs[1].State)
	assert.EqualValues(t, 1, body.Usage[types.FlowAskAI].Requests)

	resp, err := srv.Client().Get(srv.URL + "/debug/flow-runs?limit=x")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestArchivedPhotoIsReadable(t *testing.T) {
	srv, _ := newTestServer(t)
	env := callFlow(t, srv, types.FlowEstimateCarbonCredits, `{"projectType":"agroforestry","hectares":2,
		"region":"Odisha","language":"or","photoDataUri":"data:image/jpeg;base64,/9j/4AAQSkZJRg=="}`)
	require.True(t, env.Success, env.Error)

	var list struct {
		Keys []string `json:"keys"`
	}
	getJSON(t, srv, "/debug/media?prefix=carbon/2024-06-01/", &list)
	require.Len(t, list.Keys, 1)
	assert.True(t, strings.HasSuffix(list.Keys[0], ".jpeg"), list.Keys[0])

	resp, err := srv.Client().Get(srv.URL + "/debug/media?key=" + list.Keys[0])
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff, 0xe0}, raw[:4])

	missing, err := srv.Client().Get(srv.URL + "/debug/media?key=carbon/none.jpeg")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)

	getJSON(t, srv, "/debug/media?prefix=other/", &list)
	assert.Empty(t, list.Keys)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)
	req, err := http.NewRequest(http.MethodOptions, srv.URL+handler.Procedure(types.FlowAskAI), nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://kisan.example")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://kisan.example", resp.Header.Get("Access-Control-Allow-Origin"))
}

type wsMessage struct {
	Type   string    `json:"type"`
	Result *envelope `json:"result"`
	Code   string    `json:"code"`
}

func TestAssistantSocketKeepsHistory(t *testing.T) {
	srv, scripted := newTestServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/assistant?language=en"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	read := func() wsMessage {
		var m wsMessage
		require.NoError(t, conn.ReadJSON(&m))
		return m
	}
	assert.Equal(t, "ready", read().Type)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ask", "query": "My cotton leaves are curling."}))
	first := read()
	require.Equal(t, "answer", first.Type)
	require.NotNil(t, first.Result)
	require.True(t, first.Result.Success, first.Result.Error)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ask", "query": "What should I spray?"}))
	second := read()
	require.True(t, second.Result.Success)

	calls := scripted.Calls()
	require.Len(t, calls, 2)
	var text bytes.Buffer
	for _, p := range calls[1].Request.Messages[0].Parts {
		text.WriteString(p.Text)
	}
	assert.Contains(t, text.String(), "User: My cotton leaves are curling.")
	assert.Contains(t, text.String(), "Assistant: Irrigate early in the morning")

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ask", "query": ""}))
	rejected := read()
	assert.False(t, rejected.Result.Success)
	assert.Equal(t, "Please enter a question.", rejected.Result.Error)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "dance"}))
	assert.Equal(t, "invalid_argument", read().Code)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	assert.Equal(t, "pong", read().Type)
}

func TestNewRejectsBrokenMediaConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Media = config.MediaConfig{Enabled: true, Endpoint: "localhost:9000"}
	_, err := New(context.Background(), cfg, nil, Options{Model: &llm.ScriptedModel{}})
	assert.ErrorContains(t, err, "media")
}
