package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/mvollinga/cascade/pkg/elasticsearch/model"
	"strings"
)

const pitKeepAlive = "1m"

func (c *CascadeClientImpl) Search(
	ctx context.Context,
	query string,
	indices []string,
	queryResultSize *int,
) ([]map[string]interface{}, error) {
	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(indices...),
		c.es.Search.WithBody(strings.NewReader(query)),
		c.es.Search.WithSize(getQuerySize(queryResultSize)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search query failed with status: %s", res.Status())
	}
	var esResponse model.EsResponse
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode search response body: %w", err)
	}
	results := make([]map[string]interface{}, len(esResponse.Hits.HitArray))
	for i, hit := range esResponse.Hits.HitArray {
		results[i] = hit.Source
	}
	return results, nil
}

func (c *CascadeClientImpl) Count(ctx context.Context, query string, indices []string) (int64, error) {
	res, err := c.es.Count(
		c.es.Count.WithContext(ctx),
		c.es.Count.WithIndex(indices...),
		c.es.Count.WithBody(strings.NewReader(query)),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to execute count: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("count query failed with status: %s", res.Status())
	}
	var countResponse model.CountResponse
	if err := json.NewDecoder(res.Body).Decode(&countResponse); err != nil {
		return 0, fmt.Errorf("failed to decode count response body: %w", err)
	}
	return int64(countResponse.Count), nil
}

func (c *CascadeClientImpl) SearchAfter(
	ctx context.Context,
	query map[string]interface{},
	indices []string,
	searchAfterParams *SearchAfterParams,
	queryResultSize *int,
) <-chan SearchAfterResult {
	resultChannel := make(chan SearchAfterResult)
	go func() {
		defer close(resultChannel)
		pitId, err := c.openPointInTime(ctx, indices)
		if err != nil {
			sendSearchAfterError(ctx, resultChannel, err)
			return
		}
		defer c.closePointInTime(ctx, pitId)
		querySize := getQuerySize(queryResultSize)
		var searchAfter []interface{}
		for {
			pagedQuery := buildSearchWithPitQuery(query, pitId, searchAfterParams, searchAfter)
			queryBody, err := json.Marshal(pagedQuery)
			if err != nil {
				sendSearchAfterError(
					ctx, resultChannel, fmt.Errorf("failed to marshal paged query: %w", err),
				)
				return
			}
			// A search against a point in time must not name indices, the
			// point in time already pins them.
			res, err := c.es.Search(
				c.es.Search.WithContext(ctx),
				c.es.Search.WithBody(bytes.NewReader(queryBody)),
				c.es.Search.WithSize(querySize),
			)
			if err != nil {
				sendSearchAfterError(
					ctx, resultChannel, fmt.Errorf("failed to execute paged search: %w", err),
				)
				return
			}
			if res.IsError() {
				status := res.Status()
				res.Body.Close()
				sendSearchAfterError(
					ctx, resultChannel, fmt.Errorf("paged search failed with status: %s", status),
				)
				return
			}
			var esResponse model.EsResponse
			err = json.NewDecoder(res.Body).Decode(&esResponse)
			res.Body.Close()
			if err != nil {
				sendSearchAfterError(
					ctx, resultChannel, fmt.Errorf("failed to decode paged search response body: %w", err),
				)
				return
			}
			if len(esResponse.Hits.HitArray) == 0 {
				return
			}
			results := make([]map[string]interface{}, len(esResponse.Hits.HitArray))
			for i, hit := range esResponse.Hits.HitArray {
				results[i] = hit.Source
			}
			select {
			case resultChannel <- SearchAfterResult{Success: &SearchAfterSuccess{Result: results}}:
			case <-ctx.Done():
				return
			}
			if len(esResponse.Hits.HitArray) < querySize {
				return
			}
			searchAfter = esResponse.Hits.HitArray[len(esResponse.Hits.HitArray)-1].Sort
		}
	}()
	return resultChannel
}

func (c *CascadeClientImpl) openPointInTime(ctx context.Context, indices []string) (string, error) {
	res, err := c.es.OpenPointInTime(
		indices,
		pitKeepAlive,
		c.es.OpenPointInTime.WithContext(ctx),
	)
	if err != nil {
		return "", fmt.Errorf("failed to open point in time: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return "", fmt.Errorf("open point in time failed with status: %s", res.Status())
	}
	var pitResponse struct {
		Id string `json:"id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&pitResponse); err != nil {
		return "", fmt.Errorf("failed to decode point in time response body: %w", err)
	}
	return pitResponse.Id, nil
}

func (c *CascadeClientImpl) closePointInTime(ctx context.Context, pitId string) {
	body, err := json.Marshal(map[string]interface{}{"id": pitId})
	if err != nil {
		return
	}
	res, err := c.es.ClosePointInTime(
		c.es.ClosePointInTime.WithContext(ctx),
		c.es.ClosePointInTime.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return
	}
	res.Body.Close()
}

// buildSearchWithPitQuery copies query and attaches the point in time, the
// sort order and, from the second page on, the search_after cursor. The
// caller's map is left untouched.
func buildSearchWithPitQuery(
	query map[string]interface{},
	pitId string,
	searchAfterParams *SearchAfterParams,
	searchAfter []interface{},
) map[string]interface{} {
	pagedQuery := make(map[string]interface{}, len(query)+3)
	for key, value := range query {
		pagedQuery[key] = value
	}
	pagedQuery["pit"] = map[string]interface{}{
		"id":         pitId,
		"keep_alive": pitKeepAlive,
	}
	if searchAfterParams != nil {
		pagedQuery["sort"] = []map[string]interface{}{
			{searchAfterParams.SortField: searchAfterParams.SortOrder},
		}
	} else {
		pagedQuery["sort"] = []map[string]interface{}{
			{"_doc": "asc"},
		}
	}
	if searchAfter != nil {
		pagedQuery["search_after"] = searchAfter
	}
	return pagedQuery
}

func sendSearchAfterError(ctx context.Context, resultChannel chan<- SearchAfterResult, err error) {
	select {
	case resultChannel <- SearchAfterResult{Error: &err}:
	case <-ctx.Done():
	}
}

func getQuerySize(queryResultSize *int) int {
	if queryResultSize == nil {
		return SearchResultSize
	}
	return *queryResultSize
}
