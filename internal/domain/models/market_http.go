package models

// Requests for market HTTP endpoints. Defined in domain for consistency and reuse.

type ReturnsRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	Limit  int    `query:"limit" json:"limit" default:"1000" validate:"gte=1,lte=50000"`
}

type SectorsRequest struct {
	Sector string `query:"sector" json:"sector"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	Limit  int    `query:"limit" json:"limit" default:"1000" validate:"gte=1,lte=50000"`
}

type RunRequest struct {
	Ingest bool `query:"ingest" json:"ingest" default:"true"`
}
