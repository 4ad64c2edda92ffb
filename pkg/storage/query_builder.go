package storage

func byRunQueryBuilder(runId string) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				"run_id": runId,
			},
		},
	}
}
