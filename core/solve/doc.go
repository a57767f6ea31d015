// Package solve coordinates a single solve of a model: it removes stale
// diagnostics, dispatches to the backend selected by the model, summarises
// ambiguity diagnostics, marks the model solved, runs the simulator and
// optionally persists the result.
//
// A solve is strictly sequential. The diagnostic log in the working
// directory is shared between the backend (writer) and the aggregator
// (reader, then appender), so only one solve may run per directory.
package solve
