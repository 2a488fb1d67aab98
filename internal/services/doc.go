// Package services implements the collaborators at the edges of a processing request.
//
// # Source providers
//
// [HTTPFetcher] materializes a source reference into a file inside the request's workspace.
// http and https references are downloaded with a timeout and a size cap; file:// references
// and bare paths are copied, which is what the CLI uses for local videos.
//
// # Publishers
//
// [LocalPublisher] copies a finished artifact into the public directory served by the HTTP
// server and returns its public URL. The copy goes to a temporary file first and is renamed
// into place, so a partially written artifact is never served.
//
// # Error Handling
//
// Errors wrap sentinel errors from the shared package:
//   - [shared.ErrFetchFailed] : the source could not be retrieved
//   - [shared.ErrPublishFailed] : the artifact could not be stored
package services
