package types

import "kisanmitra/internal/schema"

// Conversational assistant -------------------------------------------------------

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type AskAIInput struct {
	Query    string     `json:"query"`
	Language string     `json:"language"`
	History  []ChatTurn `json:"history,omitempty"`
}

type AskAIOutput struct {
	Answer string `json:"answer"`
}

var AskAIInputSchema = schema.Obj("A question for the assistant.",
	schema.Field("query", schema.Str("The farmer's question or message.").MinLen(1).Msg("Please enter a question.")),
	schema.Field("language", language()),
	schema.Opt("history", schema.Arr("Earlier turns of the conversation, oldest first.", schema.Obj("One turn.",
		schema.Field("role", schema.Enum("Who spoke.", RoleUser, RoleAssistant)),
		schema.Field("text", schema.Str("What was said.")),
	))),
)

var AskAIOutputSchema = schema.Obj("The assistant's reply.",
	schema.Field("answer", text("The reply to the farmer's query.")),
)

func ValidateAskAIInput(raw []byte) (AskAIInput, error) {
	return decode[AskAIInput](AskAIInputSchema, raw)
}

// Speech -------------------------------------------------------------------------

type SpeechToTextInput struct {
	Audio    string `json:"audio"`
	Language string `json:"language"`
}

type SpeechToTextOutput struct {
	Text string `json:"text"`
}

type TextToSpeechInput struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

type TextToSpeechOutput struct {
	Media string `json:"media"`
}

var SpeechToTextInputSchema = schema.Obj("Recorded speech.",
	schema.Field("audio", schema.Str("Audio as a base64 data URI.").As(schema.FormatAudioURI).Msg("Audio data is required.")),
	schema.Field("language", language()),
)

var SpeechToTextOutputSchema = schema.Obj("Transcript.",
	schema.Field("text", schema.Str("The transcribed text.")),
)

var TextToSpeechInputSchema = schema.Obj("Text to read aloud.",
	schema.Field("text", schema.Str("The text to speak.").MinLen(1).Msg("Text is required.")),
	schema.Opt("language", schema.Str("The language of the text.")),
)

var TextToSpeechOutputSchema = schema.Obj("Synthesized speech.",
	schema.Field("media", schema.Str("WAV audio as a base64 data URI.").As(schema.FormatAudioURI)),
)

func ValidateSpeechToTextInput(raw []byte) (SpeechToTextInput, error) {
	return decode[SpeechToTextInput](SpeechToTextInputSchema, raw)
}

func ValidateTextToSpeechInput(raw []byte) (TextToSpeechInput, error) {
	return decode[TextToSpeechInput](TextToSpeechInputSchema, raw)
}
