package superset

import "fmt"

// Grid units for a chart leaf. Three charts fill one row width.
const (
	chartWidth  = 4
	chartHeight = 50
)

// Layout builds the position tree for a single-row dashboard holding the
// given charts in order. The result is a pure function of its inputs: the
// same title and id list always produce a structurally identical tree, which
// keeps re-derived dashboards diffable across runs.
//
// Zero ids are skipped. Each leaf's key is derived from the chart id rather
// than its position, so omissions never collide with later charts.
func Layout(title string, chartIDs []int64) map[string]any {
	rowChildren := []string{}
	tree := map[string]any{
		"DASHBOARD_VERSION_KEY": "v2",
		"ROOT_ID": map[string]any{
			"type":     "ROOT",
			"id":       "ROOT_ID",
			"children": []string{"GRID_ID"},
		},
		"GRID_ID": map[string]any{
			"type":     "GRID",
			"id":       "GRID_ID",
			"children": []string{"ROW-1"},
			"parents":  []string{"ROOT_ID"},
		},
		"HEADER_ID": map[string]any{
			"id":   "HEADER_ID",
			"type": "HEADER",
			"meta": map[string]any{"text": title},
		},
	}

	for _, id := range chartIDs {
		if id == 0 {
			continue
		}
		key := fmt.Sprintf("CHART-%d", id)
		rowChildren = append(rowChildren, key)
		tree[key] = map[string]any{
			"type":     "CHART",
			"id":       key,
			"children": []string{},
			"parents":  []string{"ROOT_ID", "GRID_ID", "ROW-1"},
			"meta": map[string]any{
				"width":   chartWidth,
				"height":  chartHeight,
				"chartId": id,
			},
		}
	}

	tree["ROW-1"] = map[string]any{
		"type":     "ROW",
		"id":       "ROW-1",
		"children": rowChildren,
		"parents":  []string{"ROOT_ID", "GRID_ID"},
		"meta":     map[string]any{"background": "BACKGROUND_TRANSPARENT"},
	}

	return tree
}
