// Package metrics provides application-level counters using stdlib expvar.
// Counters are automatically exported on the /debug/vars HTTP endpoint
// when net/http/pprof is imported in the main binary.
package metrics

import "expvar"

// Operation counters.
var (
	RowsProcessed     = expvar.NewInt("facultygraph_rows_processed_total")
	RowsSkipped       = expvar.NewInt("facultygraph_rows_skipped_total")
	TriplesCreated    = expvar.NewInt("facultygraph_triples_created_total")
	ExtractFallbacks  = expvar.NewInt("facultygraph_extract_fallbacks_total")
	MirrorFailures    = expvar.NewInt("facultygraph_mirror_failures_total")
	DocumentsFailed   = expvar.NewInt("facultygraph_documents_failed_total")
	DocumentsIngested = expvar.NewInt("facultygraph_documents_ingested_total")
)

// Inc increments the given counter by 1.
func Inc(counter *expvar.Int) { counter.Add(1) }
