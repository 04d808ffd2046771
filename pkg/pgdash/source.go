package pgdash

import "time"

// SourceFile is a CSV file discovered in the datasets directory.
// All paths use forward slashes.
type SourceFile struct {
	Path       string // path as passed to the filesystem provider
	Name       string // base name: "Olist_Orders_Dataset.csv"
	TableName  string // lower-cased stem: "olist_orders_dataset"
	SizeBytes  int64
	ModifiedAt time.Time
}

// FileScanner discovers source files in a directory.
type FileScanner interface {
	// ScanDirectory lists the top-level *.csv files of dir sorted by name.
	// A missing directory yields an error wrapping ErrSourceNotFound.
	ScanDirectory(dir string) ([]SourceFile, error)
}
