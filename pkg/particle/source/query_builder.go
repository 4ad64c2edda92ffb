package source

import "math"

// particlesInBoxQueryBuilder translates a Query into the stored-table
// filters. Infinite box bounds are left out of the range clauses, so an
// unbounded query selects the whole shower.
func particlesInBoxQueryBuilder(query Query) map[string]interface{} {
	must := []map[string]interface{}{
		{
			"term": map[string]interface{}{
				"shower_id": query.ShowerID,
			},
		},
		{
			"range": map[string]interface{}{
				"particle_id": map[string]interface{}{
					"gte": int(query.Species.Min),
					"lte": int(query.Species.Max),
				},
			},
		},
	}
	if xRange := boundsRange(query.XMin, query.XMax); xRange != nil {
		must = append(must, map[string]interface{}{
			"range": map[string]interface{}{
				"x": xRange,
			},
		})
	}
	if yRange := boundsRange(query.YMin, query.YMax); yRange != nil {
		must = append(must, map[string]interface{}{
			"range": map[string]interface{}{
				"y": yRange,
			},
		})
	}
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": must,
			},
		},
	}
}

func boundsRange(min float64, max float64) map[string]interface{} {
	boundsMap := map[string]interface{}{}
	if !math.IsInf(min, -1) {
		boundsMap["gte"] = min
	}
	if !math.IsInf(max, 1) {
		boundsMap["lte"] = max
	}
	if len(boundsMap) == 0 {
		return nil
	}
	return boundsMap
}

func showerByIdQueryBuilder(showerId string) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				"shower_id": showerId,
			},
		},
	}
}

func allShowersQueryBuilder() map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"match_all": map[string]interface{}{},
		},
	}
}
