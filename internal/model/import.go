package model

// ImportResult counts books per outcome. Errors holds one message per failed
// row, in row order.
type ImportResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}
