package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidx/internal/operations"
	"github.com/desertthunder/vidx/internal/shared"
	tu "github.com/desertthunder/vidx/internal/testing"
	"github.com/desertthunder/vidx/internal/workspace"
)

func setup(t *testing.T) (*workspace.Area, string) {
	t.Helper()
	area, err := workspace.New(workspace.Options{BaseDir: t.TempDir(), Logger: shared.NewLogger(io.Discard)})
	if err != nil {
		t.Fatalf("workspace.New() error = %v", err)
	}
	t.Cleanup(func() { area.Close() })

	input, err := area.NextInputPath(".mp4")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(input, []byte("src"), 0o644); err != nil {
		t.Fatal(err)
	}
	return area, input
}

func op(kind string, order int) operations.Operation {
	return operations.Operation{Kind: kind, Order: order, Parameters: operations.Params{}}
}

func newSequencer(tr Transcoder) *Sequencer {
	return NewSequencer(tr, shared.NewLogger(io.Discard))
}

func TestSort(t *testing.T) {
	t.Run("ascending by order", func(t *testing.T) {
		ops := []operations.Operation{op("crop", 3), op("trim", 1), op("speed-adjust", 2)}
		got := Sort(ops)
		want := []string{"trim", "speed-adjust", "crop"}
		for i, o := range got {
			if o.Kind != want[i] {
				t.Errorf("position %d = %s, want %s", i, o.Kind, want[i])
			}
		}
		if ops[0].Kind != "crop" {
			t.Error("Sort must not reorder its argument")
		}
	})

	t.Run("ties keep input order", func(t *testing.T) {
		ops := []operations.Operation{op("crop", 1), op("trim", 0), op("text-overlay", 1), op("style-filter", 1)}
		got := Sort(ops)
		want := []string{"trim", "crop", "text-overlay", "style-filter"}
		for i, o := range got {
			if o.Kind != want[i] {
				t.Errorf("position %d = %s, want %s", i, o.Kind, want[i])
			}
		}
	})

	t.Run("extreme orders", func(t *testing.T) {
		got := Sort([]operations.Operation{op("crop", 1), op("trim", math.MinInt), op("style-filter", math.MaxInt), op("speed-adjust", -1)})
		want := []string{"trim", "speed-adjust", "crop", "style-filter"}
		for i, o := range got {
			if o.Kind != want[i] {
				t.Errorf("position %d = %s, want %s", i, o.Kind, want[i])
			}
		}
	})

	t.Run("negative orders", func(t *testing.T) {
		got := Sort([]operations.Operation{op("trim", 0), op("crop", -5)})
		if got[0].Kind != "crop" {
			t.Errorf("expected crop first, got %s", got[0].Kind)
		}
	})
}

func TestSequencerRun(t *testing.T) {
	t.Run("runs every step in ascending order", func(t *testing.T) {
		area, input := setup(t)
		tr := &tu.ScriptedTranscoder{}

		ops := []operations.Operation{op("crop", 2), op("trim", 0), op("speed-adjust", 1)}
		out, err := newSequencer(tr).Run(context.Background(), area, input, ops)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		want := []operations.Kind{operations.KindTrim, operations.KindSpeed, operations.KindCrop}
		if !slices.Equal(tr.Kinds(), want) {
			t.Errorf("kinds = %v, want %v", tr.Kinds(), want)
		}
		if got := tu.MustReadFile(t, out.Output); got != "src|trim|speed-adjust|crop" {
			t.Errorf("final content = %q", got)
		}
		if len(out.Steps) != 3 {
			t.Errorf("expected 3 step reports, got %d", len(out.Steps))
		}
	})

	t.Run("swapping orders swaps execution", func(t *testing.T) {
		area, input := setup(t)
		tr := &tu.ScriptedTranscoder{}

		ops := []operations.Operation{op("trim", 2), op("crop", 1)}
		if _, err := newSequencer(tr).Run(context.Background(), area, input, ops); err != nil {
			t.Fatal(err)
		}
		want := []operations.Kind{operations.KindCrop, operations.KindTrim}
		if !slices.Equal(tr.Kinds(), want) {
			t.Errorf("kinds = %v, want %v", tr.Kinds(), want)
		}
	})

	t.Run("each step reads the previous output", func(t *testing.T) {
		area, input := setup(t)
		tr := &tu.ScriptedTranscoder{}

		ops := []operations.Operation{op("trim", 0), op("crop", 1), op("style-filter", 2)}
		if _, err := newSequencer(tr).Run(context.Background(), area, input, ops); err != nil {
			t.Fatal(err)
		}

		calls := tr.Calls()
		if calls[0].InputPath != input {
			t.Errorf("first step should read the source")
		}
		for i := 1; i < len(calls); i++ {
			if calls[i].InputPath != calls[i-1].OutputPath {
				t.Errorf("step %d input %s, want %s", i, calls[i].InputPath, calls[i-1].OutputPath)
			}
		}
	})

	t.Run("only the final output and the source remain", func(t *testing.T) {
		area, input := setup(t)

		ops := []operations.Operation{op("trim", 0), op("crop", 1), op("speed-adjust", 2), op("text-overlay", 3)}
		out, err := newSequencer(&tu.ScriptedTranscoder{}).Run(context.Background(), area, input, ops)
		if err != nil {
			t.Fatal(err)
		}

		files, err := area.Files()
		if err != nil {
			t.Fatal(err)
		}
		want := []string{input, out.Output}
		slices.Sort(want)
		if !slices.Equal(files, want) {
			t.Errorf("files = %v, want %v", files, want)
		}
	})

	t.Run("failure stops later steps", func(t *testing.T) {
		area, input := setup(t)
		tr := &tu.ScriptedTranscoder{FailAt: 2}

		ops := []operations.Operation{op("trim", 0), op("crop", 1), op("style-filter", 2)}
		_, err := newSequencer(tr).Run(context.Background(), area, input, ops)

		if len(tr.Calls()) != 2 {
			t.Errorf("expected 2 calls, got %d", len(tr.Calls()))
		}
		if !errors.Is(err, shared.ErrTranscodeFailed) {
			t.Errorf("expected ErrTranscodeFailed, got %v", err)
		}

		var serr *StepError
		if !errors.As(err, &serr) {
			t.Fatalf("expected *StepError, got %T", err)
		}
		if serr.Position != 1 || serr.Kind != "crop" {
			t.Errorf("unexpected step error %+v", serr)
		}
		tu.AssertFileExists(t, input)
	})

	t.Run("unsupported kind fails before running anything", func(t *testing.T) {
		area, input := setup(t)
		tr := &tu.ScriptedTranscoder{}

		ops := []operations.Operation{op("rotate", 0), op("trim", 1)}
		_, err := newSequencer(tr).Run(context.Background(), area, input, ops)
		if !errors.Is(err, shared.ErrUnsupportedOperation) {
			t.Errorf("expected ErrUnsupportedOperation, got %v", err)
		}
		if len(tr.Calls()) != 0 {
			t.Errorf("no step should run, got %d calls", len(tr.Calls()))
		}
	})

	t.Run("unsupported kind mid-batch keeps earlier work", func(t *testing.T) {
		area, input := setup(t)
		tr := &tu.ScriptedTranscoder{}

		ops := []operations.Operation{op("trim", 0), op("rotate", 1), op("crop", 2)}
		_, err := newSequencer(tr).Run(context.Background(), area, input, ops)
		if !errors.Is(err, shared.ErrUnsupportedOperation) {
			t.Errorf("expected ErrUnsupportedOperation, got %v", err)
		}
		if len(tr.Calls()) != 1 {
			t.Errorf("expected only the first step to run, got %d", len(tr.Calls()))
		}
	})

	t.Run("empty batch returns the source", func(t *testing.T) {
		area, input := setup(t)
		tr := &tu.ScriptedTranscoder{}
		var buf bytes.Buffer
		logger := shared.NewLogger(&buf)
		shared.SetLogLevel(logger, log.DebugLevel)

		out, err := NewSequencer(tr, logger).Run(context.Background(), area, input, nil)
		if err != nil {
			t.Fatal(err)
		}
		if out.Output != input || len(tr.Calls()) != 0 {
			t.Errorf("expected untouched source, got %+v", out)
		}
		if !strings.Contains(buf.String(), "output is the source") {
			t.Errorf("expected a source passthrough log, got %q", buf.String())
		}
	})

	t.Run("cancelled context stops before the next step", func(t *testing.T) {
		area, input := setup(t)
		tr := &tu.ScriptedTranscoder{}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newSequencer(tr).Run(ctx, area, input, []operations.Operation{op("trim", 0)})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if len(tr.Calls()) != 0 {
			t.Error("no step should run")
		}
	})
}

func TestSequencerRunSingle(t *testing.T) {
	area, input := setup(t)
	tr := &tu.ScriptedTranscoder{}

	out, err := newSequencer(tr).RunSingle(context.Background(), area, input, "adjustBrightness", operations.Params{"brightness": 20})
	if err != nil {
		t.Fatalf("RunSingle() error = %v", err)
	}
	if filepath.Dir(out.Output) != area.Dir() {
		t.Errorf("output %s outside workspace", out.Output)
	}
	calls := tr.Calls()
	if len(calls) != 1 || calls[0].Kind != operations.KindBrightness {
		t.Fatalf("unexpected calls %v", tr.Kinds())
	}
	if !slices.Contains(calls[0].Args, "eq=brightness=0.2") {
		t.Errorf("unexpected args %v", calls[0].Args)
	}
	tu.AssertFileExists(t, input)
}

func TestValidate(t *testing.T) {
	if err := Validate([]operations.Operation{op("trim", 1), op("adjustSpeed", 0)}); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if err := Validate(nil); err != nil {
		t.Errorf("Validate(nil) error = %v", err)
	}

	err := Validate([]operations.Operation{op("rotate", 5), op("trim", 1), op("blur", 2)})
	var serr *StepError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *StepError, got %v", err)
	}
	if serr.Position != 1 || serr.Kind != "blur" || !errors.Is(err, shared.ErrUnsupportedOperation) {
		t.Errorf("unexpected step error %+v", serr)
	}
}

func TestPlan(t *testing.T) {
	plan, err := Plan("in.mp4", []operations.Operation{op("crop", 1), op("trim", 0)})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if len(plan) != 2 {
		t.Fatalf("expected 2 invocations, got %d", len(plan))
	}
	if plan[0].Kind != operations.KindTrim || plan[0].InputPath != "in.mp4" {
		t.Errorf("unexpected first step %+v", plan[0])
	}
	if plan[1].InputPath != plan[0].OutputPath {
		t.Errorf("second step should read %s, got %s", plan[0].OutputPath, plan[1].InputPath)
	}

	_, err = Plan("in.mp4", []operations.Operation{op("blur", 0)})
	if !errors.Is(err, shared.ErrUnsupportedOperation) {
		t.Errorf("expected ErrUnsupportedOperation, got %v", err)
	}
}

func TestState(t *testing.T) {
	s := NewState("a")
	if !s.AtOriginal() {
		t.Error("new state should be at the original")
	}
	if prev := s.Advance("b"); prev != "a" {
		t.Errorf("Advance() returned %s, want a", prev)
	}
	if s.Current != "b" || s.Original != "a" || s.AtOriginal() {
		t.Errorf("unexpected state %+v", s)
	}
}

func TestSequencerObserver(t *testing.T) {
	area, input := setup(t)
	var seen []operations.Kind

	base := newSequencer(&tu.ScriptedTranscoder{})
	seq := base.WithObserver(func(r StepReport) { seen = append(seen, r.Kind) })

	ops := []operations.Operation{op("crop", 1), op("trim", 0)}
	if _, err := seq.Run(context.Background(), area, input, ops); err != nil {
		t.Fatal(err)
	}
	want := []operations.Kind{operations.KindTrim, operations.KindCrop}
	if !slices.Equal(seen, want) {
		t.Errorf("observed %v, want %v", seen, want)
	}
	if base.observe != nil {
		t.Error("WithObserver must not modify the receiver")
	}
}

func TestDOT(t *testing.T) {
	plan, err := Plan("in.mp4", []operations.Operation{
		{Kind: "crop", Order: 2, Parameters: operations.Params{"width": 640, "height": 480}},
		{Kind: "trim", Order: 1, Parameters: operations.Params{"startTime": 1, "endTime": 3}},
	})
	if err != nil {
		t.Fatal(err)
	}

	out, err := DOT("in.mp4", plan)
	if err != nil {
		t.Fatalf("DOT() error = %v", err)
	}

	for _, want := range []string{"digraph pipeline", "source", "step1", "step2", "->", "1. trim", "2. crop", "crop=640:480:0:0"} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT output missing %q:\n%s", want, out)
		}
	}
	if !regexp.MustCompile(`source\s*->\s*step1`).MatchString(out) || !regexp.MustCompile(`step1\s*->\s*step2`).MatchString(out) {
		t.Errorf("expected chained edges:\n%s", out)
	}
}

func TestDOTEmptyPlan(t *testing.T) {
	out, err := DOT("in.mp4", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "source") || strings.Contains(out, "->") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
