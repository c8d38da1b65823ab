package models

// Listing represents one scraped home listing, one row of the output dataset.
//
// URL is the dedup key: the canonical URL when the listing page declares one,
// otherwise the search-result URL the page was fetched from. Every other
// field is best-effort; a nil pointer means the page did not carry that value.
type Listing struct {
	ContainsDock     bool    `json:"contains_dock"`
	City             *string `json:"city"`
	URL              string  `json:"url"`
	Address          *string `json:"address"`
	Bedrooms         *int    `json:"bedrooms"`
	Bathrooms        *int    `json:"bathrooms"`
	Sqft             *int    `json:"sqft"`
	ListingPrice     *string `json:"listing_price"`
	CashDownPayment  *string `json:"cash_down_payment"`
	LoanType         *string `json:"loan_type"`
	Rate             *string `json:"rate"`
	RemainingBalance *string `json:"remaining_balance"`
	MonthlyPayment   *string `json:"monthly_payment"`
}

// Columns is the dataset header, in output order.
var Columns = []string{
	"contains_dock",
	"city",
	"url",
	"address",
	"bedrooms",
	"bathrooms",
	"sqft",
	"listing_price",
	"cash_down_payment",
	"loan_type",
	"rate",
	"remaining_balance",
	"monthly_payment",
}
