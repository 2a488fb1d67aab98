// Package server exposes the processing engine over HTTP.
//
// # Routes
//
//   - POST /process applies one operation to a source video.
//   - POST /batch applies an ordered list of operations.
//   - GET /health reports ffmpeg availability.
//   - GET /jobs and GET /jobs/{id} read the job history.
//   - GET /public/ serves published artifacts.
//
// Processing routes always answer 200 with the JSON response body; failures are reported
// through its success and error fields. Only undecodable request bodies get a 400.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// # Limits
//
// [RateLimitMiddleware] rejects requests beyond the configured rate with 429.
// The processing handler holds a semaphore slot per pipeline; a request that goes away before a slot
// frees up gets 503.
package server
