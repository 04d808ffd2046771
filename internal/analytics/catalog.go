package analytics

import (
	"fmt"

	"github.com/vvka-141/pgdash/pkg/pgdash"
)

// Source tables, named after the Olist CSV files.
const (
	CustomersTable = "olist_customers_dataset"
	OrdersTable    = "olist_orders_dataset"
	ReviewsTable   = "olist_order_reviews_dataset"
)

// Aggregation names in catalogue order.
const (
	OrdersByState     = "orders_by_state"
	OrdersByCity      = "orders_by_city"
	AvgDeliveryDelay  = "avg_delivery_delay"
	OrdersOverTime    = "orders_over_time"
	OrdersPerCustomer = "orders_per_customer"
	OrdersVsScore     = "orders_vs_score"
	OrdersByMonth     = "orders_by_month"
	Export            = "export"
)

// Artifact file names.
const (
	PieArtifact         = "pie.png"
	BarArtifact         = "bar.png"
	HBarArtifact        = "hbar.png"
	LineArtifact        = "line.png"
	HistogramArtifact   = "hist.png"
	ScatterArtifact     = "scatter.png"
	InteractiveArtifact = "plotly_slider.html"
	WorkbookArtifact    = "report.xlsx"
)

// ShapeFunc post-processes a query result before it is emitted.
type ShapeFunc func(*pgdash.Table) (*pgdash.Table, error)

// Aggregation is one catalogue entry: its queries, an optional shape and the
// artifact it produces. Chart aggregations have exactly one query. A nil
// Chart means a workbook with one sheet per query, named after the query.
type Aggregation struct {
	Name     string
	Queries  []pgdash.QueryDefinition
	Shape    ShapeFunc
	Chart    *pgdash.ChartSpec
	Artifact string
}

// IsWorkbook reports whether the aggregation produces a spreadsheet.
func (a Aggregation) IsWorkbook() bool { return a.Chart == nil }

// both returns a definition whose statement is identical in every dialect.
func both(name, sql string) pgdash.QueryDefinition {
	return pgdash.QueryDefinition{Name: name, SQL: map[pgdash.Dialect]string{
		pgdash.DialectPostgres: sql,
		pgdash.DialectSQLite:   sql,
	}}
}

func perDialect(name, postgres, sqlite string) pgdash.QueryDefinition {
	return pgdash.QueryDefinition{Name: name, SQL: map[pgdash.Dialect]string{
		pgdash.DialectPostgres: postgres,
		pgdash.DialectSQLite:   sqlite,
	}}
}

// Catalog returns the aggregations in the order they run.
func Catalog(s pgdash.ReportSettings) []Aggregation {
	return []Aggregation{
		{
			Name: OrdersByState,
			Queries: []pgdash.QueryDefinition{both(OrdersByState, fmt.Sprintf(`
				SELECT c.customer_state, COUNT(o.order_id) AS orders_count
				FROM %s c
				JOIN %s o ON c.customer_id = o.customer_id
				GROUP BY c.customer_state
				ORDER BY orders_count DESC, c.customer_state ASC
				LIMIT %d`, CustomersTable, OrdersTable, s.TopStates))},
			Chart: &pgdash.ChartSpec{
				Kind:        pgdash.ChartPie,
				Title:       fmt.Sprintf("Orders by State (Top %d)", s.TopStates),
				LabelColumn: "customer_state",
				ValueColumn: "orders_count",
			},
			Artifact: PieArtifact,
		},
		{
			Name: OrdersByCity,
			Queries: []pgdash.QueryDefinition{both(OrdersByCity, fmt.Sprintf(`
				SELECT c.customer_city, COUNT(o.order_id) AS orders_count
				FROM %s c
				JOIN %s o ON c.customer_id = o.customer_id
				GROUP BY c.customer_city
				ORDER BY orders_count DESC, c.customer_city ASC
				LIMIT %d`, CustomersTable, OrdersTable, s.TopCities))},
			Chart: &pgdash.ChartSpec{
				Kind:        pgdash.ChartBar,
				Title:       fmt.Sprintf("Orders by City (Top %d)", s.TopCities),
				LabelColumn: "customer_city",
				ValueColumn: "orders_count",
				YLabel:      "Orders",
			},
			Artifact: BarArtifact,
		},
		{
			Name: AvgDeliveryDelay,
			Queries: []pgdash.QueryDefinition{perDialect(AvgDeliveryDelay,
				fmt.Sprintf(`
				SELECT c.customer_state,
				       AVG(EXTRACT(EPOCH FROM (o.order_delivered_customer_date::timestamp - o.order_estimated_delivery_date::timestamp)) / 86400.0)::double precision AS avg_delay
				FROM %s c
				JOIN %s o ON c.customer_id = o.customer_id
				WHERE o.order_delivered_customer_date IS NOT NULL AND o.order_estimated_delivery_date IS NOT NULL
				GROUP BY c.customer_state
				ORDER BY avg_delay DESC, c.customer_state ASC
				LIMIT %d`, CustomersTable, OrdersTable, s.TopDelayStates),
				fmt.Sprintf(`
				SELECT c.customer_state,
				       AVG(julianday(o.order_delivered_customer_date) - julianday(o.order_estimated_delivery_date)) AS avg_delay
				FROM %s c
				JOIN %s o ON c.customer_id = o.customer_id
				WHERE o.order_delivered_customer_date IS NOT NULL AND o.order_estimated_delivery_date IS NOT NULL
				GROUP BY c.customer_state
				ORDER BY avg_delay DESC, c.customer_state ASC
				LIMIT %d`, CustomersTable, OrdersTable, s.TopDelayStates),
			)},
			Chart: &pgdash.ChartSpec{
				Kind:        pgdash.ChartHorizontalBar,
				Title:       "Average Delivery Delay by State",
				LabelColumn: "customer_state",
				ValueColumn: "avg_delay",
				XLabel:      "Days after estimate",
			},
			Artifact: HBarArtifact,
		},
		{
			Name: OrdersOverTime,
			Queries: []pgdash.QueryDefinition{perDialect(OrdersOverTime,
				fmt.Sprintf(`
				SELECT DATE(order_purchase_timestamp::timestamp) AS order_date, COUNT(*) AS orders_count
				FROM %s
				WHERE order_purchase_timestamp IS NOT NULL
				GROUP BY DATE(order_purchase_timestamp::timestamp)
				ORDER BY order_date`, OrdersTable),
				fmt.Sprintf(`
				SELECT date(order_purchase_timestamp) AS order_date, COUNT(*) AS orders_count
				FROM %s
				WHERE order_purchase_timestamp IS NOT NULL
				GROUP BY date(order_purchase_timestamp)
				ORDER BY order_date`, OrdersTable),
			)},
			Chart: &pgdash.ChartSpec{
				Kind:        pgdash.ChartLine,
				Title:       "Orders Over Time",
				LabelColumn: "order_date",
				ValueColumn: "orders_count",
				YLabel:      "Orders",
			},
			Artifact: LineArtifact,
		},
		{
			Name: OrdersPerCustomer,
			Queries: []pgdash.QueryDefinition{both(OrdersPerCustomer, fmt.Sprintf(`
				SELECT c.customer_id, COUNT(o.order_id) AS orders_per_customer
				FROM %s c
				JOIN %s o ON c.customer_id = o.customer_id
				GROUP BY c.customer_id
				ORDER BY c.customer_id`, CustomersTable, OrdersTable))},
			Chart: &pgdash.ChartSpec{
				Kind:        pgdash.ChartHistogram,
				Title:       "Histogram of Orders per Customer",
				ValueColumn: "orders_per_customer",
				XLabel:      "Orders per customer",
				YLabel:      "Customers",
				Bins:        s.HistogramBins,
			},
			Artifact: HistogramArtifact,
		},
		{
			Name: OrdersVsScore,
			Queries: []pgdash.QueryDefinition{perDialect(OrdersVsScore,
				fmt.Sprintf(`
				SELECT c.customer_id, COUNT(o.order_id) AS orders_count, AVG(r.review_score::double precision) AS avg_score
				FROM %s c
				JOIN %s o ON c.customer_id = o.customer_id
				JOIN %s r ON o.order_id = r.order_id
				GROUP BY c.customer_id
				ORDER BY c.customer_id
				LIMIT %d`, CustomersTable, OrdersTable, ReviewsTable, s.ScatterSample),
				fmt.Sprintf(`
				SELECT c.customer_id, COUNT(o.order_id) AS orders_count, AVG(CAST(r.review_score AS REAL)) AS avg_score
				FROM %s c
				JOIN %s o ON c.customer_id = o.customer_id
				JOIN %s r ON o.order_id = r.order_id
				GROUP BY c.customer_id
				ORDER BY c.customer_id
				LIMIT %d`, CustomersTable, OrdersTable, ReviewsTable, s.ScatterSample),
			)},
			Chart: &pgdash.ChartSpec{
				Kind:        pgdash.ChartScatter,
				Title:       "Orders vs Review Score",
				LabelColumn: "orders_count",
				ValueColumn: "avg_score",
				XLabel:      "Orders Count",
				YLabel:      "Average Score",
			},
			Artifact: ScatterArtifact,
		},
		{
			Name: OrdersByMonth,
			Queries: []pgdash.QueryDefinition{perDialect(OrdersByMonth,
				fmt.Sprintf(`
				SELECT DATE(order_purchase_timestamp::timestamp) AS order_date, order_id
				FROM %s
				WHERE order_purchase_timestamp IS NOT NULL`, OrdersTable),
				fmt.Sprintf(`
				SELECT date(order_purchase_timestamp) AS order_date, order_id
				FROM %s
				WHERE order_purchase_timestamp IS NOT NULL`, OrdersTable),
			)},
			Shape: MonthlyCounts("order_date", "order_id", "orders_count"),
			Chart: &pgdash.ChartSpec{
				Kind:        pgdash.ChartAnimatedBar,
				Title:       "Orders by Month",
				LabelColumn: "month",
				ValueColumn: "orders_count",
			},
			Artifact: InteractiveArtifact,
		},
		{
			Name: Export,
			Queries: []pgdash.QueryDefinition{
				both("customers", fmt.Sprintf("SELECT * FROM %s ORDER BY 1 LIMIT %d", CustomersTable, s.ExportRows)),
				both("orders", fmt.Sprintf("SELECT * FROM %s ORDER BY 1 LIMIT %d", OrdersTable, s.ExportRows)),
			},
			Artifact: WorkbookArtifact,
		},
	}
}
