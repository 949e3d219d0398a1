package domain

// UnknownKey groups records with no value for the grouped column.
const UnknownKey = "unknown"

// Bucket aggregates the customers sharing one company, state or month.
type Bucket struct {
	Key      string `json:"key"`
	Count    int64  `json:"count"`
	Total    Amount `json:"total"`
	Average  Amount `json:"average"`
	Approved int64  `json:"approved"`
	Pending  int64  `json:"pending"`
}

// Summary is the dashboard view over every customer record.
type Summary struct {
	TotalQuotations int64    `json:"total_quotations"`
	TotalAmount     Amount   `json:"total_amount"`
	Approved        int64    `json:"approved"`
	Pending         int64    `json:"pending"`
	ApprovalRate    float64  `json:"approval_rate"`
	ByCompany       []Bucket `json:"by_company"`
	ByState         []Bucket `json:"by_state"`
	// Timeline is keyed by registration month (YYYY-MM), oldest first.
	Timeline []Bucket `json:"timeline"`
}
