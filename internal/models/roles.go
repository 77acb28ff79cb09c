package models

// RoleMap assigns each semantic role to the name of one dataset column.
// An empty string means the role is unassigned. Built once per dataset by
// the column inferrer and immutable afterwards.
type RoleMap struct {
	Date   string `json:"date_column"`
	Item   string `json:"item_column"`
	Qty    string `json:"qty_column"`
	Rate   string `json:"rate_column"`
	Amount string `json:"amount_column"`
}

// HasRequired reports whether the two mandatory roles are assigned.
func (m RoleMap) HasRequired() bool {
	return m.Date != "" && m.Amount != ""
}
