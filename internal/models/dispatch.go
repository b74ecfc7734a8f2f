package models

// QueueResult summarizes one link-queue dispatch run.
type QueueResult struct {
	Sent      int    `json:"sent"`
	Remaining int    `json:"remaining"`
	Message   string `json:"message,omitempty"`
}

// OfferResult summarizes one search-offer dispatch run.
type OfferResult struct {
	Sent   int      `json:"sent"`
	Titles []string `json:"titles"`
}
