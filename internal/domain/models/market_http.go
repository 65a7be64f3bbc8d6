package models

// HTTP request shapes for the market query surface.

type CandlesRequest struct {
	Symbol string `query:"symbol" json:"symbol"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	Limit  int    `query:"limit" json:"limit" default:"1000" validate:"gte=1,lte=10000"`
}

type WhalesRequest struct {
	Minutes int `query:"minutes" json:"minutes" default:"60" validate:"gte=1,lte=1440"`
}
