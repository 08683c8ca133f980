package models

// Page is the list-endpoint envelope {items[], total, has_more}.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

// Cursor tracks how far a paginated collection has been loaded.
// Page is the last page successfully applied; 0 means nothing loaded yet.
type Cursor struct {
	Page     int
	PageSize int
	HasMore  bool
	Total    int
}

// PageRequest selects one page of a list endpoint.
type PageRequest struct {
	Page     int
	PageSize int
}
