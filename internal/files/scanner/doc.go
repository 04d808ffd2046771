// Package scanner discovers the CSV source files of a datasets directory.
//
// Discovery is top-level only: every regular file whose extension is .csv
// (any case) becomes a pgdash.SourceFile, sorted by file name, with its
// target table name derived from the lower-cased file stem.
package scanner
