package operations

import (
	"fmt"

	"github.com/desertthunder/vidx/internal/shared"
)

// Operation is one requested transformation step.
//
// Kind is kept as the caller sent it so responses can echo the label; it is validated at compile time.
type Operation struct {
	Kind       string `json:"type"`
	Parameters Params `json:"parameters"`
	Order      int    `json:"order"`
}

// Invocation is a compiled ffmpeg argument list with its declared input and output.
type Invocation struct {
	Kind       Kind
	Args       []string
	InputPath  string
	OutputPath string
}

// PathAllocator hands out fresh output paths. [workspace.Area] is the production implementation.
type PathAllocator interface {
	NextOutputPath() (string, error)
}

// Compiler maps operations to invocations.
type Compiler struct {
	alloc PathAllocator
}

// NewCompiler creates a Compiler that takes output paths from alloc.
func NewCompiler(alloc PathAllocator) *Compiler {
	return &Compiler{alloc: alloc}
}

// Compile builds the invocation for kind applied to input.
//
// Unknown kinds fail with [shared.ErrUnsupportedOperation] before an output path is requested.
// A failing allocator yields [shared.ErrResourceAllocation].
func (c *Compiler) Compile(input, kind string, params Params) (*Invocation, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return nil, err
	}

	body := Args(k, params)

	output, err := c.alloc.NextOutputPath()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrResourceAllocation, err)
	}

	args := make([]string, 0, len(body)+4)
	args = append(args, "-i", input)
	args = append(args, body...)
	args = append(args, "-y", output)

	return &Invocation{Kind: k, Args: args, InputPath: input, OutputPath: output}, nil
}

// CompileOperation is Compile for an [Operation].
func (c *Compiler) CompileOperation(input string, op Operation) (*Invocation, error) {
	return c.Compile(input, op.Kind, op.Parameters)
}

// Args returns the kind-specific arguments placed between the input and output designations.
func Args(k Kind, params Params) []string {
	if params == nil {
		params = Params{}
	}

	switch k {
	case KindBrightness:
		return brightnessArgs(resolveBrightness(params))
	case KindSpeed:
		return speedArgs(resolveSpeed(params))
	case KindTrim:
		return trimArgs(resolveTrim(params))
	case KindCrop:
		return cropArgs(resolveCrop(params))
	case KindText:
		return textArgs(resolveText(params))
	case KindStyle:
		return styleArgs(resolveStyle(params))
	default:
		return nil
	}
}
