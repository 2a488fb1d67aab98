// Package tasks orchestrates one processing request from source reference to published artifact.
//
// # Core Operations
//
// The [Engine] interface defines two operations:
//
//  1. [Engine.Process] : one operation applied to one source
//  2. [Engine.Batch] : an ordered list of operations applied in sequence
//
// Both fetch the source into a fresh workspace, run the pipeline, publish the final file and
// report a [Response]. The workspace is closed on every exit path, so no intermediate outlives
// its request.
//
// [Processor.BulkBatch] applies one operation list to many sources through a rate-limited worker
// pool and can write a per-source manifest.
//
// # Failure Reporting
//
// Failures never escape as Go errors: they become a Response with Success false and an error
// message prefixed by the stage that failed ("Failed to download video: ", "Failed to process
// video: ", "Failed to process batch operations: ", "Failed to upload result: ").
//
// # Progress Reporting
//
// Stage changes and completed steps are sent on an optional channel. Sends never block: a full
// channel drops the update.
//
// # Job History
//
// The optional [JobRecorder] interface persists each request. Recording errors are logged and
// never change the response.
package tasks
