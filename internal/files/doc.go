// Package files groups the CSV ingestion sub-packages:
//   - filesystem: filesystem abstraction (OS and in-memory)
//   - scanner: discovery of *.csv files and table name derivation
//   - parser: delimiter and encoding fallback, column naming, type inference
//   - loader: per-file parse and table replace with failure isolation
//
// # Usage
//
//	l := loader.NewLoader(store, logger)
//	report, err := l.LoadDirectory(ctx, "./datasets")
package files
