// Package models defines the persistent entities of the vidx job history.
//
// A [Job] records one processing request: its operation label (a single operation name or
// "batch"), the source reference, how many operations it carried, and how it ended. Each
// completed pipeline step is kept as a [JobStep].
//
// All persistent entities implement the Model interface providing ID, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
