// Package ffmpeg runs compiled invocations against the ffmpeg binary.
//
// The [Invoker] is a thin wrapper: it executes the argument list, measures wall-clock time,
// and turns any failure (non-zero exit, missing binary, killed by context) into a
// [TranscodeError] carrying ffmpeg's stderr. It never retries and never inspects the output file.
package ffmpeg
