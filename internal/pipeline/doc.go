// Package pipeline chains compiled operations over successive intermediate files.
//
// A [Sequencer] stable-sorts operations by their order field, then folds over them from the
// original source: each step compiles against the current frontier, runs the transcoder, and
// on success advances the frontier and discards the file it replaced. The first failing step
// aborts the run; the request's workspace teardown reclaims whatever is left.
//
// [Plan] compiles the same sequence against placeholder paths without running it, and [DOT]
// renders such a plan as a Graphviz graph.
package pipeline
