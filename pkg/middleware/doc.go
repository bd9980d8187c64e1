// Package middleware provides production observability sinks for trellis
// dispatchers.
//
// The sinks are server.Recorder values: the dispatcher feeds each one a
// server.Record after every request, outside the handler chain, so a slow
// or broken sink can never change a routing decision.
//
//	config := server.DefaultConfig()
//	config.Recorders = []server.Recorder{
//	    middleware.Prometheus(),
//	    middleware.OpenTelemetry(),
//	}
//
// Expose the Prometheus endpoint separately:
//
//	http.Handle("/metrics", promhttp.Handler())
//	go http.ListenAndServe(":9090", nil)
package middleware
