package request

type SubmitJobRequest struct {
	RetailerID string `json:"retailer_id"`
	Category   string `json:"category"`
	Priority   string `json:"priority"` // "high", "medium" or "low"
}
