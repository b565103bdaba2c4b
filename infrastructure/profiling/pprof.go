// Package profiling exposes on-demand pprof endpoints and continuous
// profiling through Pyroscope.
package profiling

import (
	"net/http"
	"net/http/pprof"
)

// PprofPrefix is where the pprof index is mounted.
const PprofPrefix = "/debug/pprof/"

// RegisterPprof mounts the standard pprof endpoints on mux:
//   - /debug/pprof/heap - Memory allocation profiling
//   - /debug/pprof/goroutine - Goroutine stack traces
//   - /debug/pprof/profile - CPU profiling (30s default)
//   - /debug/pprof/trace - Execution trace
//
// Mount it only on a listener that is not reachable from the outside.
func RegisterPprof(mux *http.ServeMux) {
	mux.HandleFunc(PprofPrefix, pprof.Index)
	mux.HandleFunc(PprofPrefix+"cmdline", pprof.Cmdline)
	mux.HandleFunc(PprofPrefix+"profile", pprof.Profile)
	mux.HandleFunc(PprofPrefix+"symbol", pprof.Symbol)
	mux.HandleFunc(PprofPrefix+"trace", pprof.Trace)
}
