package types

import "kisanmitra/internal/schema"

// Government schemes -------------------------------------------------------------

type FindGovernmentSchemesInput struct {
	Query    string `json:"query"`
	Language string `json:"language"`
}

type Scheme struct {
	Title              string `json:"title"`
	Eligibility        string `json:"eligibility"`
	Benefits           string `json:"benefits"`
	ApplicationProcess string `json:"applicationProcess"`
	Link               string `json:"link,omitempty"`
}

type FindGovernmentSchemesOutput struct {
	Schemes []Scheme `json:"schemes"`
}

var FindGovernmentSchemesInputSchema = schema.Obj("Scheme search query.",
	schema.Field("query", schema.Str("What the farmer is looking for.").MinLen(3).Msg("Query must be at least 3 characters.")),
	schema.Field("language", language()),
)

var FindGovernmentSchemesOutputSchema = schema.Obj("Matching government schemes.",
	schema.Field("schemes", schema.Arr("Relevant schemes.", schema.Obj("One scheme.",
		schema.Field("title", text("The scheme title.")),
		schema.Field("eligibility", text("Who can apply.")),
		schema.Field("benefits", text("What the scheme provides.")),
		schema.Field("applicationProcess", text("How to apply.")),
		schema.Opt("link", schema.Str("Link to the official scheme page.")),
	))),
)

func ValidateFindGovernmentSchemesInput(raw []byte) (FindGovernmentSchemesInput, error) {
	return decode[FindGovernmentSchemesInput](FindGovernmentSchemesInputSchema, raw)
}
