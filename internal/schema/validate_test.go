package schema

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plotSchema() *Schema {
	return Obj("plot",
		Field("crop", Str("crop").MinLen(2).Msg("Please enter a crop name.")),
		Field("hectares", Num("area").Pos().Coerced().Msg("Area must be a positive number.")),
		Field("language", Str("language").MinLen(1)),
		Opt("stage", Enum("growth stage", "Seedling", "Vegetative", "Flowering")),
		Opt("trees", Int("tree count").Coerced()),
		Opt("sown", Str("sowing date").As(FormatDate)),
		Opt("photo", Str("photo").As(FormatImageURI)),
	)
}

func TestConformCanonicalizes(t *testing.T) {
	raw := []byte(`{"crop":"Wheat","hectares":"2.5","language":"en","stage":"flowering","trees":"40","extra":true}`)
	out, err := Conform(plotSchema(), raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"crop":"Wheat","hectares":2.5,"language":"en","stage":"Flowering","trees":40}`, string(out))
}

func TestValidateFirstFailure(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		field string
		msg   string
	}{
		{"missing crop", `{"hectares":1,"language":"en"}`, "crop", "Please enter a crop name."},
		{"short crop", `{"crop":"W","hectares":1,"language":"en"}`, "crop", "Please enter a crop name."},
		{"zero area", `{"crop":"Rice","hectares":0,"language":"en"}`, "hectares", "Area must be a positive number."},
		{"negative area", `{"crop":"Rice","hectares":"-3","language":"en"}`, "hectares", "Area must be a positive number."},
		{"wrong type", `{"crop":12,"hectares":1,"language":"en"}`, "crop", "Please enter a crop name."},
		{"empty language", `{"crop":"Rice","hectares":1,"language":" "}`, "language", "language is required."},
		{"bad enum", `{"crop":"Rice","hectares":1,"language":"en","stage":"Ripe"}`, "stage", "stage must be one of: Seedling, Vegetative, Flowering."},
		{"fraction", `{"crop":"Rice","hectares":1,"language":"en","trees":2.5}`, "trees", "trees must be a whole number."},
		{"huge count", `{"crop":"Rice","hectares":1,"language":"en","trees":1e30}`, "trees", "trees must be a whole number."},
		{"huge coerced count", `{"crop":"Rice","hectares":1,"language":"en","trees":"-9e18"}`, "trees", "trees must be a whole number."},
		{"bad date", `{"crop":"Rice","hectares":1,"language":"en","sown":"12/01/2024"}`, "sown", "sown must be a date in YYYY-MM-DD format."},
		{"audio as photo", `{"crop":"Rice","hectares":1,"language":"en","photo":"data:audio/wav;base64,AAEC"}`, "photo", "photo must be a base64 image data URI."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(plotSchema(), []byte(tc.raw))
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, tc.msg, verr.Message)
		})
	}
}

func TestOptionalBlankIsAbsent(t *testing.T) {
	raw := []byte(`{"crop":"Rice","hectares":1,"language":"en","stage":"","trees":null,"photo":""}`)
	out, err := Conform(plotSchema(), raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"crop":"Rice","hectares":1,"language":"en"}`, string(out))
}

func TestArrayBounds(t *testing.T) {
	s := Obj("", Field("picks", Arr("picks", Str("")).Len(3, 3)))
	err := Validate(s, []byte(`{"picks":["a","b"]}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "picks must contain at least 3 items.", verr.Message)

	err = Validate(s, []byte(`{"picks":["a","b","c","d"]}`))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "picks must contain at most 3 items.", verr.Message)

	require.NoError(t, Validate(s, []byte(`{"picks":["a","b","c"]}`)))
}

func TestNestedPath(t *testing.T) {
	s := Obj("",
		Field("rows", Arr("", Obj("",
			Field("level", Enum("", "Low", "High")),
		))),
	)
	err := Validate(s, []byte(`{"rows":[{"level":"low"},{"level":"extreme"}]}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "rows[1].level", verr.Field)
}

func TestRejectsMalformedJSON(t *testing.T) {
	err := Validate(plotSchema(), []byte(`{"crop":`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Invalid input.", verr.Message)
}

func TestDecode(t *testing.T) {
	type plot struct {
		Crop     string  `json:"crop"`
		Hectares float64 `json:"hectares"`
		Language string  `json:"language"`
		Stage    string  `json:"stage,omitempty"`
		Trees    *int    `json:"trees,omitempty"`
	}
	got, err := Decode[plot](plotSchema(), []byte(`{"crop":"Maize","hectares":"4","language":"hi","stage":"SEEDLING","trees":12}`))
	require.NoError(t, err)
	trees := 12
	want := plot{Crop: "Maize", Hectares: 4, Language: "hi", Stage: "Seedling", Trees: &trees}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decode mismatch (-want +got):\n%s", diff)
	}
}

func TestRequired(t *testing.T) {
	assert.Equal(t, []string{"crop", "hectares", "language"}, plotSchema().Required())
	p, ok := plotSchema().Property("stage")
	require.True(t, ok)
	assert.True(t, p.Optional)
}
