package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/mvollinga/cascade/pkg/elasticsearch/model"
)

func (c *CascadeClientImpl) BulkIndex(
	ctx context.Context,
	metaInfo []MetaMap,
	documentInfo []DocumentMap,
	index string,
) error {
	var buf bytes.Buffer
	for i, document := range documentInfo {
		meta := []byte(`{"index":{}}`)
		if metaInfo != nil && metaInfo[i] != nil {
			metaBytes, err := json.Marshal(map[string]interface{}{"index": metaInfo[i]})
			if err != nil {
				return fmt.Errorf("failed to marshal bulk meta information: %w", err)
			}
			meta = metaBytes
		}
		data, err := json.Marshal(document)
		if err != nil {
			return fmt.Errorf("failed to marshal bulk document: %w", err)
		}
		buf.Write(meta)
		buf.WriteByte('\n')
		buf.Write(data)
		buf.WriteByte('\n')
	}
	res, err := c.es.Bulk(
		bytes.NewReader(buf.Bytes()),
		c.es.Bulk.WithContext(ctx),
		c.es.Bulk.WithIndex(index),
		c.es.Bulk.WithRefresh(string(c.refreshRate)),
	)
	if err != nil {
		return fmt.Errorf("failed to execute bulk request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk request failed with status: %s", res.Status())
	}
	var bulkResponse model.BulkResponse
	if err := json.NewDecoder(res.Body).Decode(&bulkResponse); err != nil {
		return fmt.Errorf("failed to decode bulk response body: %w", err)
	}
	if bulkResponse.Errors {
		return fmt.Errorf("bulk request reported item failures: %w", firstBulkError(bulkResponse))
	}
	return nil
}

func (c *CascadeClientImpl) Index(
	ctx context.Context,
	metaInfo MetaMap,
	documentInfo DocumentMap,
	index string,
) error {
	return c.BulkIndex(ctx, []MetaMap{metaInfo}, []DocumentMap{documentInfo}, index)
}

func firstBulkError(bulkResponse model.BulkResponse) error {
	for _, item := range bulkResponse.Items {
		if item.Index != nil && item.Index.Error != nil {
			return fmt.Errorf("%s: %s", item.Index.Error.Type, item.Index.Error.Reason)
		}
	}
	return fmt.Errorf("no failing item in response")
}
