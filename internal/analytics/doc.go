// Package analytics defines the fixed catalogue of aggregations over the Olist
// tables and runs them, handing each result to a chart or spreadsheet emitter.
//
// Every aggregation carries one statement per store dialect. Entities with no
// qualifying rows are absent from results rather than zero-filled, and ties
// in ranked results break on the dimension ascending.
package analytics
