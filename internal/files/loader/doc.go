// Package loader loads every CSV file of a datasets directory into a store.
//
// Each file replaces the table named after it. Files load one at a time; a
// file that cannot be parsed or written is reported and skipped, and the
// tables of the other files are unaffected.
package loader
