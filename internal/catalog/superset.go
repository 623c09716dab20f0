package catalog

import "github.com/fluxwms/dashforge/internal/superset"

// Database returns the warehouse connection every dataset hangs off. Created
// once and referenced by id.
func Database() superset.DatabaseSpec {
	return superset.DatabaseSpec{
		DatabaseName:   "Trino - WMS Data Mesh",
		Engine:         "trino",
		SQLAlchemyURI:  "trino://trino@trino.data-mesh.svc.cluster.local:8080/iceberg",
		ExposeInSQLLab: true,
		AllowRunAsync:  true,
		Extra: map[string]any{
			"metadata_params":                 map[string]any{},
			"engine_params":                   map[string]any{},
			"metadata_cache_timeout":          map[string]any{},
			"schemas_allowed_for_file_upload": []any{},
		},
	}
}

// Families returns the dashboard families in provisioning order.
func Families() []Family {
	return []Family{
		ordersByRequirements(),
		orderFlowTracker(),
		toteLookup(),
		routePerformance(),
		routeOptimization(),
		laborPerformance(),
		inventoryAnalytics(),
		wavePerformance(),
		receivingOperations(),
		operationsKPI(),
	}
}

func ordersByRequirements() Family {
	return Family{
		Title: "Orders by Special Requirements",
		// Chart-only family: the bar chart is embedded elsewhere and has no
		// dashboard of its own.
		Slug: "",
		Dataset: DatasetSource{
			Physical: &PhysicalDataset{
				Schema:      "gold",
				Table:       "orders_by_requirements_daily",
				Description: "Daily aggregation of orders by special requirements",
			},
			Virtual: &VirtualDataset{
				Name:   "vw_orders_by_requirements",
				Schema: "gold",
				SQL: `
SELECT
    'gift_wrap' as requirement,
    COUNT(*) as order_count,
    100.0 * COUNT(*) / SUM(COUNT(*)) OVER() as percentage_of_total
FROM iceberg.bronze.orders_raw
WHERE gift_wrap = true
GROUP BY 1
UNION ALL
SELECT
    'multi_item' as requirement,
    COUNT(*) as order_count,
    100.0 * COUNT(*) / SUM(COUNT(*)) OVER() as percentage_of_total
FROM iceberg.bronze.orders_raw
WHERE total_items > 1
GROUP BY 1
UNION ALL
SELECT
    'single_item' as requirement,
    COUNT(*) as order_count,
    100.0 * COUNT(*) / SUM(COUNT(*)) OVER() as percentage_of_total
FROM iceberg.bronze.orders_raw
WHERE total_items = 1
GROUP BY 1
`,
			},
		},
		Charts: []ChartDef{{
			Name:    "Orders by Special Requirements",
			VizType: "dist_bar",
			Params: map[string]any{
				"viz_type":      "dist_bar",
				"metrics":       []any{sqlMetric("Order Count", "SUM(order_count)")},
				"groupby":       []any{"requirement"},
				"columns":       []any{},
				"row_limit":     10,
				"order_desc":    true,
				"show_legend":   true,
				"y_axis_format": "SMART_NUMBER",
				"color_scheme":  "supersetColors",
			},
			Description: "Bar chart showing distribution of orders by special requirements",
		}},
	}
}

func orderFlowTracker() Family {
	return Family{
		Title:       "Order Flow Tracker",
		Slug:        "order-flow-tracker",
		Description: "Dashboard for tracking order flow through fulfillment stages",
		Dataset: DatasetSource{
			Physical: &PhysicalDataset{
				Schema:      "gold",
				Table:       "order_flow_summary",
				Description: "Complete order flow with all stage timestamps and durations",
			},
			Virtual: &VirtualDataset{
				Name:   "vw_order_flow_summary",
				Schema: "gold",
				SQL: `
SELECT
    o.order_id,
    o.workflow_id,
    o.customer_id,
    o.priority,
    o.status as current_status,
    CASE
        WHEN s.shipped_at IS NOT NULL THEN 'shipped'
        WHEN p.completed_at IS NOT NULL THEN 'packed'
        WHEN pk.completed_at IS NOT NULL THEN 'picked'
        WHEN w.wave_id IS NOT NULL THEN 'wave_assigned'
        ELSE 'received'
    END as current_stage,
    o.created_at as order_received_at,
    w.assigned_at as wave_assigned_at,
    w.wave_id,
    pk.started_at as picking_started_at,
    pk.completed_at as picking_completed_at,
    pk.task_id as pick_task_id,
    pk.picker_id,
    p.started_at as packing_started_at,
    p.completed_at as packing_completed_at,
    p.task_id as pack_task_id,
    s.shipped_at,
    s.tracking_number,
    s.carrier,
    CAST(DATE_DIFF('minute', pk.started_at, pk.completed_at) AS DOUBLE) as picking_duration_min,
    CAST(DATE_DIFF('minute', p.started_at, p.completed_at) AS DOUBLE) as packing_duration_min,
    CAST(DATE_DIFF('minute', o.created_at, COALESCE(s.shipped_at, CURRENT_TIMESTAMP)) AS DOUBLE) as total_fulfillment_duration_min
FROM iceberg.bronze.orders_raw o
LEFT JOIN iceberg.bronze.waves_raw w ON o.wave_id = w.wave_id
LEFT JOIN iceberg.bronze.pick_tasks_raw pk ON o.order_id = pk.order_id
LEFT JOIN iceberg.bronze.pack_tasks_raw p ON o.order_id = p.order_id
LEFT JOIN iceberg.bronze.shipments_raw s ON o.order_id = s.order_id
`,
			},
		},
		Charts: []ChartDef{
			{
				Name:    "Order Flow - Summary",
				VizType: "table",
				Params: map[string]any{
					"viz_type":    "table",
					"query_mode":  "raw",
					"all_columns": []any{"order_id", "customer_id", "priority", "current_status", "current_stage", "tracking_number"},
					"row_limit":   100,
				},
				Description: "Order summary information",
			},
			{
				Name:    "Order Flow - Stage Durations",
				VizType: "dist_bar",
				Params: map[string]any{
					"viz_type": "dist_bar",
					"metrics": []any{
						sqlMetric("Avg Picking", "AVG(picking_duration_min)"),
						sqlMetric("Avg Packing", "AVG(packing_duration_min)"),
					},
					"groupby":       []any{"priority"},
					"row_limit":     100,
					"show_legend":   true,
					"y_axis_format": "SMART_NUMBER",
				},
				Description: "Average time spent in each stage by priority",
			},
			{
				Name:    "Order Flow - Timeline",
				VizType: "table",
				Params: map[string]any{
					"viz_type":   "table",
					"query_mode": "raw",
					"all_columns": []any{
						"order_id", "order_received_at", "picking_started_at",
						"picking_completed_at", "packing_started_at", "packing_completed_at",
						"shipped_at", "total_fulfillment_duration_min",
					},
					"row_limit": 100,
				},
				Description: "Order flow timeline with timestamps",
			},
		},
	}
}

func toteLookup() Family {
	return Family{
		Title:       "Tote Lookup",
		Slug:        "tote-lookup",
		Description: "Dashboard for looking up orders by tote ID",
		Dataset: DatasetSource{
			// Consolidation data lives only in the operational store; there is
			// no physical gold table to try first.
			Virtual: &VirtualDataset{
				Name:   "vw_orders_by_tote",
				Schema: "consolidation_db",
				SQL: `
SELECT
    consolidationid,
    orderid,
    sourcetotes,
    status,
    station,
    totalexpected,
    totalconsolidated,
    createdat
FROM mongodb.consolidation_db.consolidations
ORDER BY createdat DESC
`,
			},
		},
		Charts: []ChartDef{{
			Name:    "Tote Lookup - Orders",
			VizType: "table",
			Params: map[string]any{
				"viz_type":    "table",
				"query_mode":  "raw",
				"all_columns": []any{"consolidationid", "orderid", "sourcetotes", "status", "station", "totalexpected", "totalconsolidated", "createdat"},
				"row_limit":   100,
			},
			Description: "Orders in consolidation with tote information",
		}},
	}
}

func routePerformance() Family {
	return Family{
		Title:       "Route Performance by Zone",
		Slug:        "route-performance",
		Description: "Dashboard for analyzing picking route efficiency across warehouse zones",
		Dataset: DatasetSource{
			Physical: &PhysicalDataset{
				Schema:      "gold",
				Table:       "route_performance_by_zone_daily",
				Description: "Daily route performance metrics by warehouse zone",
			},
			Virtual: &VirtualDataset{
				Name:   "vw_route_performance_by_zone",
				Schema: "routing_db",
				SQL: `
SELECT
    CAST(createdat AS DATE) AS route_date,
    routeid,
    orderid,
    zone,
    strategy,
    status,
    estimateddistance,
    totalitems,
    createdat
FROM mongodb.routing_db.routes
ORDER BY createdat DESC
`,
			},
		},
		Charts: []ChartDef{
			{
				Name:    "Route Performance - Routes by Zone",
				VizType: "dist_bar",
				Params: map[string]any{
					"viz_type":      "dist_bar",
					"metrics":       []any{sqlMetric("Total Routes", "COUNT(*)")},
					"groupby":       []any{"zone"},
					"row_limit":     20,
					"order_desc":    true,
					"show_legend":   true,
					"y_axis_format": "SMART_NUMBER",
					"color_scheme":  "supersetColors",
				},
				Description: "Number of routes per zone",
			},
			{
				Name:    "Route Performance - Avg Distance",
				VizType: "big_number_total",
				Params: map[string]any{
					"viz_type":      "big_number_total",
					"metric":        sqlMetric("Avg Distance", "AVG(estimateddistance)"),
					"y_axis_format": ",.0f",
				},
				Description: "Average estimated distance (m)",
			},
			{
				Name:    "Route Performance - Details",
				VizType: "table",
				Params: map[string]any{
					"viz_type":    "table",
					"query_mode":  "raw",
					"all_columns": []any{"route_date", "routeid", "orderid", "zone", "strategy", "status", "estimateddistance", "totalitems"},
					"row_limit":   100,
				},
				Description: "Route performance details",
			},
		},
	}
}

func routeOptimization() Family {
	return Family{
		Title:       "Route Optimization Analysis",
		Slug:        "route-optimization",
		Description: "Dashboard for identifying routes that need optimization",
		Dataset: DatasetSource{
			Physical: &PhysicalDataset{
				Schema:      "gold",
				Table:       "route_optimization_candidates",
				Description: "Routes with optimization scores and flags",
			},
			Virtual: &VirtualDataset{
				Name:   "vw_route_optimization_candidates",
				Schema: "routing_db",
				SQL: `
SELECT
    routeid,
    orderid,
    CAST(createdat AS DATE) AS route_date,
    zone,
    strategy,
    status,
    estimateddistance,
    totalitems,
    CASE WHEN estimateddistance > 500 THEN 2 ELSE 0 END +
    CASE WHEN totalitems > 20 THEN 2 ELSE 0 END AS optimization_score,
    createdat
FROM mongodb.routing_db.routes
ORDER BY createdat DESC
`,
			},
		},
		Charts: []ChartDef{
			{
				Name:    "Route Optimization - Score Distribution",
				VizType: "dist_bar",
				Params: map[string]any{
					"viz_type":      "dist_bar",
					"metrics":       []any{sqlMetric("Route Count", "COUNT(*)")},
					"groupby":       []any{"optimization_score"},
					"row_limit":     20,
					"order_desc":    false,
					"show_legend":   true,
					"y_axis_format": "SMART_NUMBER",
					"color_scheme":  "supersetColors",
				},
				Description: "Distribution of routes by optimization score",
			},
			{
				Name:    "Route Optimization - Routes Needing Attention",
				VizType: "table",
				Params: map[string]any{
					"viz_type":      "table",
					"query_mode":    "raw",
					"all_columns":   []any{"routeid", "orderid", "route_date", "zone", "strategy", "status", "estimateddistance", "totalitems", "optimization_score"},
					"row_limit":     50,
					"order_by_cols": []any{[]any{"optimization_score", false}},
				},
				Description: "Routes with highest optimization scores",
			},
		},
	}
}

func laborPerformance() Family {
	return Family{
		Title:       "Labor Performance",
		Slug:        "labor-performance",
		Description: "Dashboard for monitoring workforce productivity and utilization",
		Dataset: DatasetSource{
			Physical: &PhysicalDataset{
				Schema:      "gold",
				Table:       "labor_productivity_daily",
				Description: "Daily labor productivity metrics by worker, zone, and shift",
			},
		},
		Charts: []ChartDef{
			{
				Name:    "Labor - Total Workers",
				VizType: "big_number_total",
				Params: map[string]any{
					"viz_type":  "big_number_total",
					"metric":    sqlMetric("Workers", "COUNT(DISTINCT worker_id)"),
					"subheader": "Active Workers",
				},
				Description: "Total active workers",
			},
			{
				Name:    "Labor - Avg Items/Hour",
				VizType: "big_number_total",
				Params: map[string]any{
					"viz_type":      "big_number_total",
					"metric":        sqlMetric("Items/Hour", "AVG(items_per_hour)"),
					"y_axis_format": ",.1f",
					"subheader":     "Items Per Hour",
				},
				Description: "Average items processed per hour",
			},
			{
				Name:    "Labor - Productivity by Zone",
				VizType: "dist_bar",
				Params: map[string]any{
					"viz_type":      "dist_bar",
					"metrics":       []any{sqlMetric("Items/Hour", "AVG(items_per_hour)")},
					"groupby":       []any{"zone"},
					"row_limit":     10,
					"order_desc":    true,
					"show_legend":   true,
					"y_axis_format": ",.1f",
					"color_scheme":  "supersetColors",
				},
				Description: "Average productivity by zone",
			},
			{
				Name:    "Labor - Worker Performance",
				VizType: "table",
				Params: map[string]any{
					"viz_type":    "table",
					"query_mode":  "raw",
					"all_columns": []any{"date", "worker_id", "worker_name", "zone", "shift_type", "tasks_completed", "items_processed", "items_per_hour", "accuracy_rate"},
					"row_limit":   100,
				},
				Description: "Worker performance details",
			},
		},
	}
}

func inventoryAnalytics() Family {
	return Family{
		Title:       "Inventory Analytics",
		Slug:        "inventory-analytics",
		Description: "Dashboard for stock visibility and inventory health monitoring",
		Dataset: DatasetSource{
			Physical: &PhysicalDataset{
				Schema:      "silver",
				Table:       "inventory_current",
				Description: "Current inventory levels and stock status",
			},
		},
		Charts: []ChartDef{
			{
				Name:    "Inventory - Total SKUs",
				VizType: "big_number_total",
				Params: map[string]any{
					"viz_type":  "big_number_total",
					"metric":    sqlMetric("SKUs", "COUNT(DISTINCT sku)"),
					"subheader": "SKUs",
				},
				Description: "Total unique SKUs",
			},
			{
				Name:    "Inventory - Total Units",
				VizType: "big_number_total",
				Params: map[string]any{
					"viz_type":      "big_number_total",
					"metric":        sqlMetric("Units", "SUM(total_quantity)"),
					"y_axis_format": ",",
					"subheader":     "Units",
				},
				Description: "Total units in inventory",
			},
			{
				Name:    "Inventory - Low Stock Alerts",
				VizType: "big_number_total",
				Params: map[string]any{
					"viz_type":  "big_number_total",
					"metric":    sqlMetric("Low Stock", "SUM(CASE WHEN available_quantity <= reorder_point THEN 1 ELSE 0 END)"),
					"subheader": "Alerts",
				},
				Description: "SKUs below reorder point",
			},
			{
				Name:    "Inventory - Reorder Alerts",
				VizType: "table",
				Params: map[string]any{
					"viz_type":    "table",
					"query_mode":  "raw",
					"all_columns": []any{"sku", "product_name", "total_quantity", "available_quantity", "reserved_quantity", "reorder_point"},
					"row_limit":   100,
				},
				Description: "SKUs requiring reorder",
			},
		},
	}
}

func wavePerformance() Family {
	return Family{
		Title:       "Wave Performance",
		Slug:        "wave-performance",
		Description: "Dashboard for monitoring wave creation, completion rates, and cycle times",
		Dataset: DatasetSource{
			Physical: &PhysicalDataset{
				Schema:      "gold",
				Table:       "wave_performance_daily",
				Description: "Daily wave execution metrics by wave type",
			},
		},
		Charts: []ChartDef{
			{
				Name:    "Wave - Total Waves",
				VizType: "big_number_total",
				Params: map[string]any{
					"viz_type":  "big_number_total",
					"metric":    sqlMetric("Waves", "SUM(waves_created)"),
					"subheader": "Waves Created",
				},
				Description: "Total waves created",
			},
			{
				Name:    "Wave - Completion Rate",
				VizType: "big_number_total",
				Params: map[string]any{
					"viz_type":      "big_number_total",
					"metric":        sqlMetric("Rate", "100.0 * SUM(waves_completed) / NULLIF(SUM(waves_created), 0)"),
					"y_axis_format": ",.1f",
					"subheader":     "% Completion",
				},
				Description: "Wave completion rate",
			},
			{
				Name:    "Wave - By Type",
				VizType: "dist_bar",
				Params: map[string]any{
					"viz_type":     "dist_bar",
					"metrics":      []any{sqlMetric("Waves", "SUM(waves_created)")},
					"groupby":      []any{"wave_type"},
					"row_limit":    10,
					"order_desc":   true,
					"show_legend":  true,
					"color_scheme": "supersetColors",
				},
				Description: "Waves by type",
			},
			{
				Name:    "Wave - Performance Details",
				VizType: "table",
				Params: map[string]any{
					"viz_type":    "table",
					"query_mode":  "raw",
					"all_columns": []any{"date", "wave_type", "waves_created", "waves_completed", "waves_cancelled", "avg_orders_per_wave", "avg_completion_time_hours"},
					"row_limit":   100,
				},
				Description: "Wave performance details",
			},
		},
	}
}

func receivingOperations() Family {
	return Family{
		Title:       "Receiving Operations",
		Slug:        "receiving",
		Description: "Dashboard for monitoring inbound operations and vendor performance",
		Dataset: DatasetSource{
			Physical: &PhysicalDataset{
				Schema:      "gold",
				Table:       "receiving_metrics_daily",
				Description: "Daily receiving metrics by dock door",
			},
		},
		Charts: []ChartDef{
			{
				Name:    "Receiving - Total Receipts",
				VizType: "big_number_total",
				Params: map[string]any{
					"viz_type":  "big_number_total",
					"metric":    sqlMetric("Receipts", "SUM(total_receipts)"),
					"subheader": "Receipts",
				},
				Description: "Total receipts processed",
			},
			{
				Name:    "Receiving - Dock-to-Stock",
				VizType: "big_number_total",
				Params: map[string]any{
					"viz_type":      "big_number_total",
					"metric":        sqlMetric("Minutes", "AVG(avg_dock_to_stock_minutes)"),
					"y_axis_format": ",.0f",
					"subheader":     "Avg Minutes",
				},
				Description: "Average dock-to-stock time",
			},
			{
				Name:    "Receiving - Units by Dock",
				VizType: "dist_bar",
				Params: map[string]any{
					"viz_type":     "dist_bar",
					"metrics":      []any{sqlMetric("Units", "SUM(total_units_received)")},
					"groupby":      []any{"dock_door"},
					"row_limit":    10,
					"order_desc":   true,
					"show_legend":  true,
					"color_scheme": "supersetColors",
				},
				Description: "Units received by dock door",
			},
			{
				Name:    "Receiving - Details",
				VizType: "table",
				Params: map[string]any{
					"viz_type":    "table",
					"query_mode":  "raw",
					"all_columns": []any{"date", "dock_door", "total_receipts", "completed_receipts", "total_units_received", "receiving_accuracy", "avg_dock_to_stock_minutes", "on_time_rate"},
					"row_limit":   100,
				},
				Description: "Receiving performance details",
			},
		},
	}
}

func operationsKPI() Family {
	return Family{
		Title:       "Operations KPI",
		Slug:        "operations-kpi",
		Description: "Executive-level overview of warehouse operations with key performance indicators",
		Dataset: DatasetSource{
			Physical: &PhysicalDataset{
				Schema:      "gold",
				Table:       "operations_summary_daily",
				Description: "Daily operations summary with key metrics across all domains",
			},
		},
		Charts: []ChartDef{
			{
				Name:    "KPI - Orders Today",
				VizType: "big_number_total",
				Params: map[string]any{
					"viz_type":  "big_number_total",
					"metric":    sqlMetric("Orders", "SUM(orders_received)"),
					"subheader": "Orders",
				},
				Description: "Total orders received",
			},
			{
				Name:    "KPI - Fulfillment Rate",
				VizType: "big_number_total",
				Params: map[string]any{
					"viz_type":      "big_number_total",
					"metric":        sqlMetric("Rate", "100.0 * SUM(orders_completed) / NULLIF(SUM(orders_received), 0)"),
					"y_axis_format": ",.1f",
					"subheader":     "% Fulfillment",
				},
				Description: "Order fulfillment rate",
			},
			{
				Name:    "KPI - Items Picked",
				VizType: "big_number_total",
				Params: map[string]any{
					"viz_type":      "big_number_total",
					"metric":        sqlMetric("Items", "SUM(items_picked)"),
					"y_axis_format": ",",
					"subheader":     "Items",
				},
				Description: "Total items picked",
			},
			{
				Name:    "KPI - Shipments",
				VizType: "big_number_total",
				Params: map[string]any{
					"viz_type":  "big_number_total",
					"metric":    sqlMetric("Shipments", "SUM(shipments_sent)"),
					"subheader": "Shipments",
				},
				Description: "Total shipments sent",
			},
			{
				Name:    "KPI - Active Workers",
				VizType: "big_number_total",
				Params: map[string]any{
					"viz_type":  "big_number_total",
					"metric":    sqlMetric("Workers", "SUM(active_workers)"),
					"subheader": "Workers",
				},
				Description: "Active workers",
			},
			{
				Name:    "KPI - Operations Summary",
				VizType: "table",
				Params: map[string]any{
					"viz_type":    "table",
					"query_mode":  "raw",
					"all_columns": []any{"date", "orders_received", "orders_completed", "order_completion_rate", "items_picked", "packages_packed", "shipments_sent", "receipts_completed", "returns_processed", "active_workers"},
					"row_limit":   30,
				},
				Description: "Daily operations summary",
			},
		},
	}
}

// sqlMetric builds the ad-hoc SQL metric block charts use for aggregations.
func sqlMetric(label, expr string) map[string]any {
	return map[string]any{
		"label":          label,
		"expressionType": "SQL",
		"sqlExpression":  expr,
	}
}
