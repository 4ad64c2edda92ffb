package bootstrapper

const ParticleIndexName = "particle_index"
const ShowerIndexName = "shower_index"

var particleIndex = map[string]interface{}{
	"settings": map[string]interface{}{
		"number_of_shards":   1,
		"number_of_replicas": 1,
	},
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"shower_id": map[string]interface{}{
				"type": "keyword",
			},
			"row": map[string]interface{}{
				"type": "long",
			},
			"particle_id": map[string]interface{}{
				"type": "integer",
			},
			"x": map[string]interface{}{
				"type": "double",
			},
			"y": map[string]interface{}{
				"type": "double",
			},
			"t": map[string]interface{}{
				"type": "double",
			},
			"p_x": map[string]interface{}{
				"type": "double",
			},
			"p_y": map[string]interface{}{
				"type": "double",
			},
			"p_z": map[string]interface{}{
				"type": "double",
			},
			"observation_level": map[string]interface{}{
				"type": "double",
			},
		},
	},
}

var showerIndex = map[string]interface{}{
	"settings": map[string]interface{}{
		"number_of_shards":   1,
		"number_of_replicas": 1,
	},
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"shower_id": map[string]interface{}{
				"type": "keyword",
			},
			"zenith": map[string]interface{}{
				"type": "double",
			},
			"azimuth": map[string]interface{}{
				"type": "double",
			},
			"energy": map[string]interface{}{
				"type": "double",
			},
			"n_electrons": map[string]interface{}{
				"type": "double",
			},
			"particle": map[string]interface{}{
				"type": "keyword",
			},
		},
	},
}
