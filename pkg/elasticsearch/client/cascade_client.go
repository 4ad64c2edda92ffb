package client

import (
	"context"
	"github.com/elastic/go-elasticsearch/v8"
)

// RefreshRate controls when documents written through the client become
// visible to search.
type RefreshRate string

const (
	// Wait blocks the write until the next scheduled index refresh.
	Wait RefreshRate = "wait_for"
	// Immediate refreshes the index as part of the write. Convenient for
	// tests, expensive for large bulk loads.
	Immediate RefreshRate = "true"
	// Async returns as soon as the documents have been accepted.
	Async RefreshRate = "false"
)

// SearchResultSize is the number of hits returned when the caller does not
// ask for a specific size.
const SearchResultSize = 10

// SearchAfterParams selects the sort used to page through results. A nil
// params pages in _doc order, which is the cheapest order Elasticsearch
// offers.
type SearchAfterParams struct {
	SortField string
	SortOrder string
}

type SearchAfterSuccess struct {
	Result []map[string]interface{}
}

// SearchAfterResult carries one page of hits or the error that ended the
// pagination. Exactly one of Success and Error is set.
type SearchAfterResult struct {
	Success *SearchAfterSuccess
	Error   *error
}

type CascadeClient interface {
	// BulkIndex indexes documentInfo into index with a single bulk request.
	// metaInfo carries per-document meta information such as an _id and may
	// be nil, or hold nil entries, for documents without any.
	BulkIndex(ctx context.Context, metaInfo []MetaMap, documentInfo []DocumentMap, index string) error
	// Index indexes a single document. Convenience wrapper around BulkIndex.
	Index(ctx context.Context, metaInfo MetaMap, documentInfo DocumentMap, index string) error
	// Search runs query against the given indices and returns the document
	// sources of the matching hits. A nil queryResultSize requests
	// SearchResultSize hits.
	Search(ctx context.Context, query string, indices []string, queryResultSize *int) ([]map[string]interface{}, error)
	// SearchAfter pages through every hit of query using a point in time and
	// search_after pagination, delivering one SearchAfterResult per page on
	// the returned channel. The channel is closed after the last page, on
	// error, or when ctx is done.
	SearchAfter(
		ctx context.Context,
		query map[string]interface{},
		indices []string,
		searchAfterParams *SearchAfterParams,
		queryResultSize *int,
	) <-chan SearchAfterResult
	// Count returns the number of documents in the given indices matching
	// query.
	Count(ctx context.Context, query string, indices []string) (int64, error)
}

type CascadeClientImpl struct {
	es          *elasticsearch.Client
	refreshRate RefreshRate
}

func NewCascadeClientImpl(es *elasticsearch.Client, refreshRate RefreshRate) *CascadeClientImpl {
	return &CascadeClientImpl{
		es:          es,
		refreshRate: refreshRate,
	}
}
