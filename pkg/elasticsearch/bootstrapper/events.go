package bootstrapper

const StationEventIndexName = "station_event_index"

var stationEventIndex = map[string]interface{}{
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
			"station_number": map[string]interface{}{
				"type": "integer",
			},
			"row": map[string]interface{}{
				"type": "long",
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
			"n1": map[string]interface{}{
				"type": "double",
			},
			"n2": map[string]interface{}{
				"type": "double",
			},
			"n3": map[string]interface{}{
				"type": "double",
			},
			"n4": map[string]interface{}{
				"type": "double",
			},
			"t1": map[string]interface{}{
				"type": "double",
			},
			"t2": map[string]interface{}{
				"type": "double",
			},
			"t3": map[string]interface{}{
				"type": "double",
			},
			"t4": map[string]interface{}{
				"type": "double",
			},
			"t_trigger": map[string]interface{}{
				"type": "double",
			},
			"pulse_heights": map[string]interface{}{
				"type": "double",
			},
			"integrals": map[string]interface{}{
				"type": "double",
			},
			"traces": map[string]interface{}{
				"type":  "integer",
				"index": false,
			},
			"detectors_hit": map[string]interface{}{
				"type": "integer",
			},
		},
	},
}

const detectorsHitPipelineName = "detectors_hit_pipeline"

var detectorsHitSettings = map[string]interface{}{
	"index": map[string]interface{}{
		"default_pipeline": detectorsHitPipelineName,
	},
}

var detectorsHitPipeline = map[string]interface{}{
	"description": "Pipeline to count the detectors with a signal on each event",
	"processors": []map[string]interface{}{
		{
			"script": map[string]interface{}{
				"source": "def hits = 0;" +
					"if (ctx.n1 != null && ctx.n1 > 0) { hits += 1; }" +
					"if (ctx.n2 != null && ctx.n2 > 0) { hits += 1; }" +
					"if (ctx.n3 != null && ctx.n3 > 0) { hits += 1; }" +
					"if (ctx.n4 != null && ctx.n4 > 0) { hits += 1; }" +
					"ctx.detectors_hit = hits;",
			},
		},
	},
}
