package models

// Offer is one discounted marketplace item produced by a search run.
// Offers are recomputed on every collection; only the ID survives a run,
// inside the sent-id set.
type Offer struct {
	ID            string
	Title         string
	Price         float64
	OriginalPrice float64
	Discount      float64 // percent, 0-100, rounded to two decimals
	SoldQuantity  int
	Permalink     string
	Thumbnail     string
}
