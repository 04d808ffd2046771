// Package fixtures builds Olist-shaped CSV datasets for tests.
package fixtures

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/vvka-141/pgdash/internal/files/filesystem"
)

// Dataset file names as published by Olist.
const (
	CustomersFile = "olist_customers_dataset.csv"
	OrdersFile    = "olist_orders_dataset.csv"
	ReviewsFile   = "olist_order_reviews_dataset.csv"
)

var (
	customerHeader = []string{"customer_id", "customer_unique_id", "customer_zip_code_prefix", "customer_city", "customer_state"}
	orderHeader    = []string{
		"order_id", "customer_id", "order_status", "order_purchase_timestamp", "order_approved_at",
		"order_delivered_carrier_date", "order_delivered_customer_date", "order_estimated_delivery_date",
	}
	reviewHeader = []string{
		"review_id", "order_id", "review_score", "review_comment_title", "review_comment_message",
		"review_creation_date", "review_answer_timestamp",
	}
)

// Order is one row of the orders dataset. Empty timestamps are written as empty cells.
type Order struct {
	ID         string
	CustomerID string
	Status     string
	Purchased  string
	Delivered  string
	Estimated  string
}

// OlistBuilder provides a fluent API for building the three Olist files.
//
// Example usage:
//
//	fs := NewOlistBuilder().
//	    AddCustomer("c1", "sao paulo", "SP").
//	    AddOrder(Order{ID: "o1", CustomerID: "c1", Purchased: "2017-10-02 10:56:33"}).
//	    AddReview("r1", "o1", 5).
//	    BuildMemoryFS("/datasets")
type OlistBuilder struct {
	customers [][]string
	orders    [][]string
	reviews   [][]string
	extra     map[string]string
}

// NewOlistBuilder creates a builder with empty datasets.
func NewOlistBuilder() *OlistBuilder {
	return &OlistBuilder{extra: make(map[string]string)}
}

// AddCustomer adds a customer row.
func (b *OlistBuilder) AddCustomer(id, city, state string) *OlistBuilder {
	n := len(b.customers) + 1
	b.customers = append(b.customers, []string{id, fmt.Sprintf("u%04d", n), fmt.Sprintf("%05d", 1000+n), city, state})
	return b
}

// AddCustomerOrders adds a customer in state with count delivered orders.
// Order ids are derived from the customer id.
func (b *OlistBuilder) AddCustomerOrders(id, city, state string, count int) *OlistBuilder {
	b.AddCustomer(id, city, state)
	base := time.Date(2017, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		ts := base.AddDate(0, 0, i)
		b.AddOrder(Order{
			ID:         fmt.Sprintf("%s-o%d", id, i+1),
			CustomerID: id,
			Purchased:  ts.Format("2006-01-02 15:04:05"),
			Delivered:  ts.AddDate(0, 0, 10).Format("2006-01-02 15:04:05"),
			Estimated:  ts.AddDate(0, 0, 12).Format("2006-01-02 15:04:05"),
		})
	}
	return b
}

// AddOrder adds an order row. Status defaults to "delivered".
func (b *OlistBuilder) AddOrder(o Order) *OlistBuilder {
	status := o.Status
	if status == "" {
		status = "delivered"
	}
	b.orders = append(b.orders, []string{o.ID, o.CustomerID, status, o.Purchased, o.Purchased, "", o.Delivered, o.Estimated})
	return b
}

// AddReview adds a review row.
func (b *OlistBuilder) AddReview(id, orderID string, score int) *OlistBuilder {
	b.reviews = append(b.reviews, []string{id, orderID, fmt.Sprint(score), "", "", "2018-01-18 00:00:00", "2018-01-18 21:46:59"})
	return b
}

// AddFile adds an arbitrary file next to the datasets.
func (b *OlistBuilder) AddFile(name, content string) *OlistBuilder {
	b.extra[name] = content
	return b
}

// Build returns file name to CSV content.
func (b *OlistBuilder) Build() map[string]string {
	files := map[string]string{
		CustomersFile: render(customerHeader, b.customers),
		OrdersFile:    render(orderHeader, b.orders),
		ReviewsFile:   render(reviewHeader, b.reviews),
	}
	for name, content := range b.extra {
		files[name] = content
	}
	return files
}

// BuildMemoryFS writes the datasets into an in-memory filesystem rooted at dir.
func (b *OlistBuilder) BuildMemoryFS(dir string) *filesystem.MemoryFileSystem {
	mfs := filesystem.NewMemoryFileSystem(dir)
	files := b.Build()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		mfs.AddFile(path.Join(dir, name), files[name])
	}
	return mfs
}

func render(header []string, rows [][]string) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(header)
	_ = w.WriteAll(rows)
	return buf.String()
}
