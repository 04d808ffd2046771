package pgdash

import "time"

// LoadOutcome is the result of loading one source file.
type LoadOutcome struct {
	Source    SourceFile
	Table     string
	Delimiter rune
	// Recoded is true when the file was not valid UTF-8 and was decoded as Windows-1252.
	Recoded  bool
	RowCount int
	Elapsed  time.Duration
	Err      error
}

// OK reports whether the file loaded.
func (o LoadOutcome) OK() bool { return o.Err == nil }

// LoadReport summarizes a load batch. Outcomes are in discovery order.
type LoadReport struct {
	Dir      string
	Outcomes []LoadOutcome
	// NoFiles is true when the directory contained no CSV files.
	NoFiles bool
}

// Succeeded returns the outcomes that loaded.
func (r *LoadReport) Succeeded() []LoadOutcome {
	var out []LoadOutcome
	for _, o := range r.Outcomes {
		if o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Failed returns the outcomes that did not load.
func (r *LoadReport) Failed() []LoadOutcome {
	var out []LoadOutcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// ArtifactOutcome is the result of one aggregation.
type ArtifactOutcome struct {
	Name     string
	Path     string
	RowCount int
	// Skipped is true when the result was empty and no artifact was written.
	Skipped bool
	Err     error
}

// ReportSummary lists aggregation outcomes in catalogue order.
type ReportSummary struct {
	Outcomes []ArtifactOutcome
}

// Produced counts artifacts written.
func (s *ReportSummary) Produced() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Err == nil && !o.Skipped {
			n++
		}
	}
	return n
}

// Failed returns the aggregations that errored.
func (s *ReportSummary) Failed() []ArtifactOutcome {
	var out []ArtifactOutcome
	for _, o := range s.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}
