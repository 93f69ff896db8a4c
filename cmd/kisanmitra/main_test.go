package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kisanmitra/internal/types"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("KISAN_CONFIG", "")
	t.Setenv("RUNLOG_PG_DSN", "")
	t.Setenv("MEDIA_MINIO_ENDPOINT", "")
	t.Setenv("APP_ENV", "local")
	t.Setenv("LLM_RPS", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestFlowsCommand(t *testing.T) {
	out, err := execute(t, "", "flows")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(types.Flows))
	assert.Contains(t, lines[1], "/kisanmitra.v1.FlowService/GetMarketPrice")
}

func TestQuoteCommandIsDeterministic(t *testing.T) {
	first, err := execute(t, "", "quote", "Wheat", "Azadpur", "--date", "2024-06-01")
	require.NoError(t, err)
	second, err := execute(t, "", "quote", " wheat ", "AZADPUR", "--date", "2024-06-01")
	require.NoError(t, err)
	assert.JSONEq(t, first, second)

	var md types.MarketData
	require.NoError(t, json.Unmarshal([]byte(first), &md))
	require.Len(t, md.PriceHistory, types.PriceHistoryDays)
	assert.Equal(t, "2024-06-01", md.PriceHistory[types.PriceHistoryDays-1].Date)

	_, err = execute(t, "", "quote", "Wheat", "Azadpur", "--date", "June 1")
	assert.Error(t, err)
}

func TestRunCommandFromStdin(t *testing.T) {
	out, err := execute(t, `{"query":"When should I sow mustard?","language":"hi"}`, "run", types.FlowAskAI, "--provider", "fake")
	require.NoError(t, err)
	var env struct {
		Success bool              `json:"success"`
		Data    types.AskAIOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Data.Answer)
}

func TestRunCommandFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"crop":"Wheat","language":"en"}`), 0o644))
	out, err := execute(t, "", "run", types.FlowGetMarketPrice, "--provider", "fake", "--input", path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"Mandi name is required."}`, out)
}

func TestRunCommandUnknownFlow(t *testing.T) {
	_, err := execute(t, `{}`, "run", "launchRocket", "--provider", "fake")
	assert.ErrorContains(t, err, "unknown flow")
}
