// Package analysis extracts tasks and conflicting perspectives from journal
// entries and aggregates them into a report.
//
// Matching is purely lexical: fixed, case-insensitive English patterns are
// applied in declared order and the first success wins. Every function in the
// package is deterministic, allocates only per-call state and never mutates its
// input, so calls may run concurrently without coordination.
//
// Typical use:
//
//	result := analysis.ProcessEntries(entries)
//	fmt.Println(result.Summary)
//	for _, t := range result.Tasks {
//	    fmt.Println(t.Text)
//	}
package analysis
