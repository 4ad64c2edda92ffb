package client

import (
	"encoding/json"
	"fmt"
)

type MetaMap = map[string]interface{}
type DocumentMap = map[string]interface{}

// ToMetaAndDataMap converts documents into the meta and data maps BulkIndex
// expects. An _id field on a document is moved into its meta map so that
// Elasticsearch uses it as the document id instead of generating one.
func ToMetaAndDataMap[T any](values []T) ([]MetaMap, []DocumentMap, error) {
	metaMapList := make([]MetaMap, len(values))
	dataMapList := make([]DocumentMap, len(values))
	for i, value := range values {
		dataBytes, err := json.Marshal(value)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal value %v: %w", value, err)
		}
		var dataMap DocumentMap
		if err := json.Unmarshal(dataBytes, &dataMap); err != nil {
			return nil, nil, fmt.Errorf("failed to unmarshal value %v: %w", value, err)
		}
		if id, ok := dataMap["_id"]; ok {
			metaMapList[i] = MetaMap{"_id": id}
			delete(dataMap, "_id")
		}
		dataMapList[i] = dataMap
	}
	return metaMapList, dataMapList, nil
}
