package pipeline

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidx/internal/ffmpeg"
	"github.com/desertthunder/vidx/internal/operations"
	"github.com/desertthunder/vidx/internal/shared"
)

// Transcoder executes one invocation. [ffmpeg.Invoker] is the production implementation.
type Transcoder interface {
	Run(ctx context.Context, inv *operations.Invocation) (*ffmpeg.Result, error)
}

// Workspace hands out output paths and reclaims superseded ones. [workspace.Area] satisfies it.
type Workspace interface {
	operations.PathAllocator
	Supersede(previous, original string) bool
}

// StepReport records one completed step.
type StepReport struct {
	Position int
	Kind     operations.Kind
	Input    string
	Output   string
	Elapsed  time.Duration
}

// Outcome is the result of a successful run.
type Outcome struct {
	Output string
	Steps  []StepReport
}

// Sequencer runs operations strictly one after another.
type Sequencer struct {
	transcoder Transcoder
	logger     *log.Logger
	observe    func(StepReport)
}

// NewSequencer creates a Sequencer that runs steps with t.
func NewSequencer(t Transcoder, logger *log.Logger) *Sequencer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Sequencer{transcoder: t, logger: shared.WithLogger(logger, "component", "pipeline")}
}

// WithObserver returns a copy of s that calls fn after every completed step.
func (s *Sequencer) WithObserver(fn func(StepReport)) *Sequencer {
	c := *s
	c.observe = fn
	return &c
}

// Sort returns a copy of ops ordered ascending by Order. Equal orders keep their input order.
func Sort(ops []operations.Operation) []operations.Operation {
	sorted := slices.Clone(ops)
	slices.SortStableFunc(sorted, func(a, b operations.Operation) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return sorted
}

// Run applies ops to input inside ws.
//
// An empty list returns input unchanged. Any failure is returned as a [*StepError] and no later
// step runs. A cancelled ctx stops the run before the next step starts.
func (s *Sequencer) Run(ctx context.Context, ws Workspace, input string, ops []operations.Operation) (*Outcome, error) {
	sorted := Sort(ops)
	compiler := operations.NewCompiler(ws)
	state := NewState(input)
	outcome := &Outcome{Steps: make([]StepReport, 0, len(sorted))}

	for pos, op := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, stepError(pos, op, err)
		}

		report, err := s.step(ctx, compiler, state.Current, pos, op)
		if err != nil {
			s.logger.Error("pipeline aborted", "step", pos+1, "of", len(sorted), "kind", op.Kind, "err", err)
			return nil, stepError(pos, op, err)
		}

		previous := state.Advance(report.Output)
		ws.Supersede(previous, state.Original)
		outcome.Steps = append(outcome.Steps, *report)
		if s.observe != nil {
			s.observe(*report)
		}
	}

	outcome.Output = state.Current
	if state.AtOriginal() {
		s.logger.Debug("no steps applied, output is the source", "source", input)
	}
	s.logger.Debug("pipeline complete", "steps", len(sorted))
	return outcome, nil
}

// RunSingle applies one operation to input. It is Run with a one-element list.
func (s *Sequencer) RunSingle(ctx context.Context, ws Workspace, input, kind string, params operations.Params) (*Outcome, error) {
	return s.Run(ctx, ws, input, []operations.Operation{{Kind: kind, Parameters: params}})
}

func (s *Sequencer) step(ctx context.Context, c *operations.Compiler, input string, pos int, op operations.Operation) (*StepReport, error) {
	inv, err := c.CompileOperation(input, op)
	if err != nil {
		return nil, err
	}

	res, err := s.transcoder.Run(ctx, inv)
	if err != nil {
		return nil, err
	}

	return &StepReport{
		Position: pos,
		Kind:     inv.Kind,
		Input:    input,
		Output:   res.OutputPath,
		Elapsed:  res.Elapsed,
	}, nil
}

// Validate checks every kind in ops without touching the filesystem. The first unsupported
// kind in sorted order is returned as a [*StepError].
func Validate(ops []operations.Operation) error {
	for pos, op := range Sort(ops) {
		if _, err := operations.ParseKind(op.Kind); err != nil {
			return stepError(pos, op, err)
		}
	}
	return nil
}

// Plan compiles ops against placeholder paths without running anything.
func Plan(input string, ops []operations.Operation) ([]*operations.Invocation, error) {
	sorted := Sort(ops)
	alloc := &placeholders{}
	compiler := operations.NewCompiler(alloc)

	plan := make([]*operations.Invocation, 0, len(sorted))
	current := input
	for pos, op := range sorted {
		inv, err := compiler.CompileOperation(current, op)
		if err != nil {
			return nil, stepError(pos, op, err)
		}
		plan = append(plan, inv)
		current = inv.OutputPath
	}
	return plan, nil
}

type placeholders struct{ n int }

func (p *placeholders) NextOutputPath() (string, error) {
	p.n++
	return "step" + strconv.Itoa(p.n) + ".mp4", nil
}
