// Package parser turns raw CSV bytes into a typed pgdash.Table.
//
// Parsing tries the comma delimiter first and falls back to semicolon when
// the comma parse is malformed. Content that is not valid UTF-8 is decoded
// as Windows-1252. Column names are normalized to lower_snake_case and each
// column's type is inferred from its non-empty values.
package parser
