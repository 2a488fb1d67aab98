// Package operations turns a requested operation (a kind name plus a loosely typed parameter bag)
// into a concrete ffmpeg argument list.
//
// # Parameters
//
// [Params] is the decoded JSON object of one operation. Each kind reads it through a typed
// config struct ([BrightnessConfig], [CropConfig], ...) whose resolver pulls every field with an
// extract-or-default lookup. Resolution never fails: a missing key or a value of the wrong type
// yields the field's default.
//
// # Compilation
//
// [Compiler.Compile] validates the kind first, so an unknown kind returns
// [shared.ErrUnsupportedOperation] before any output path is allocated. Every invocation has the
// shape
//
//	-i <input> <kind-specific args> -y <output>
//
// and the filter fragments come from one small template function per kind in filters.go.
package operations
