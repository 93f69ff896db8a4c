package action

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kisanmitra/internal/types"
)

func TestResultEnvelope(t *testing.T) {
	ok, err := json.Marshal(OK(types.AskAIOutput{Answer: "Sow after the first rain."}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"answer":"Sow after the first rain."}}`, string(ok))

	bad, err := json.Marshal(Fail[types.AskAIOutput]("Please enter a question."))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"Please enter a question."}`, string(bad))

	blank, err := json.Marshal(Fail[types.AskAIOutput](" "))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"`+genericMessage+`"}`, string(blank))
}

func TestResultDecode(t *testing.T) {
	var r Result[types.AskAIOutput]
	require.NoError(t, json.Unmarshal([]byte(`{"success":true,"data":{"answer":"yes"}}`), &r))
	assert.Equal(t, OK(types.AskAIOutput{Answer: "yes"}), r)

	require.NoError(t, json.Unmarshal([]byte(`{"success":false,"error":"nope"}`), &r))
	assert.Equal(t, Fail[types.AskAIOutput]("nope"), r)

	assert.Error(t, json.Unmarshal([]byte(`{"success":false}`), &r))
	assert.Error(t, json.Unmarshal([]byte(`{"success":true}`), &r))
}

func TestResultAny(t *testing.T) {
	r := OK(types.AskAIOutput{Answer: "yes"}).Any()
	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"answer":"yes"}}`, string(b))
	assert.Nil(t, Fail[int]("x").Any().Data)
}
