// Package httpserver hosts the attribute control API over HTTP.
//
// The server wraps the attrhandler routes with request logging and adds the
// operational endpoints load balancers and orchestration need:
//
//	GET /livez    liveness probe, always 200 while the process runs
//	GET /readyz   readiness probe, 503 while draining
//	GET /drain    mark not ready and wait out the drain period
//	GET /undrain  mark ready again
//
// Optional pprof profiling is mounted under /debug when enabled.
package httpserver
