package bootstrapper

const CoincidenceIndexName = "coincidence_index"

var coincidenceIndex = map[string]interface{}{
	"settings": map[string]interface{}{
		"number_of_shards":   1,
		"number_of_replicas": 1,
	},
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"run_id": map[string]interface{}{
				"type": "keyword",
			},
			"shower_id": map[string]interface{}{
				"type": "keyword",
			},
			"timestamp": map[string]interface{}{
				"type": "long",
			},
			"nanoseconds": map[string]interface{}{
				"type": "long",
			},
			"ext_timestamp": map[string]interface{}{
				"type": "long",
			},
			"num_events": map[string]interface{}{
				"type": "integer",
			},
			"x": map[string]interface{}{
				"type": "double",
			},
			"y": map[string]interface{}{
				"type": "double",
			},
			"zenith": map[string]interface{}{
				"type": "double",
			},
			"azimuth": map[string]interface{}{
				"type": "double",
			},
			"size": map[string]interface{}{
				"type": "double",
			},
			"energy": map[string]interface{}{
				"type": "double",
			},
			"station_numbers": map[string]interface{}{
				"type": "integer",
			},
			"event_refs": map[string]interface{}{
				"type": "nested",
				"properties": map[string]interface{}{
					"station_number": map[string]interface{}{
						"type": "integer",
					},
					"row": map[string]interface{}{
						"type": "long",
					},
				},
			},
		},
	},
}
