package model

// Structs for parsing the response to a bulk request, used to surface
// per-item indexing failures that Elasticsearch reports with a 200 status.
type BulkResponse struct {
	Took   int        `json:"took"`
	Errors bool       `json:"errors"`
	Items  []BulkItem `json:"items"`
}

type BulkItem struct {
	Index *BulkItemResult `json:"index,omitempty"`
}

type BulkItemResult struct {
	Index  string         `json:"_index"`
	ID     string         `json:"_id"`
	Status int            `json:"status"`
	Error  *BulkItemError `json:"error,omitempty"`
}

type BulkItemError struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}
