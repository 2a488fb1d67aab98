package operations

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/desertthunder/vidx/internal/shared"
)

func TestParams(t *testing.T) {
	t.Run("Number", func(t *testing.T) {
		tc := []struct {
			name   string
			params Params
			want   float64
		}{
			{name: "missing key", params: Params{}, want: 7},
			{name: "float", params: Params{"v": 2.5}, want: 2.5},
			{name: "int", params: Params{"v": 3}, want: 3},
			{name: "int64", params: Params{"v": int64(-4)}, want: -4},
			{name: "json number", params: Params{"v": json.Number("1.25")}, want: 1.25},
			{name: "string is mistyped", params: Params{"v": "12"}, want: 7},
			{name: "bool is mistyped", params: Params{"v": true}, want: 7},
			{name: "nil value", params: Params{"v": nil}, want: 7},
			{name: "NaN", params: Params{"v": math.NaN()}, want: 7},
			{name: "infinity", params: Params{"v": math.Inf(1)}, want: 7},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := tt.params.Number("v", 7); got != tt.want {
					t.Errorf("Number() = %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("Integer truncates fractions", func(t *testing.T) {
		p := Params{"a": 10.9, "b": -3.7, "c": 42, "d": 1e12}
		if got := p.Integer("a", 0); got != 10 {
			t.Errorf("Integer(a) = %d, want 10", got)
		}
		if got := p.Integer("b", 0); got != -3 {
			t.Errorf("Integer(b) = %d, want -3", got)
		}
		if got := p.Integer("c", 0); got != 42 {
			t.Errorf("Integer(c) = %d, want 42", got)
		}
		if got := p.Integer("d", 5); got != 5 {
			t.Errorf("Integer(d) = %d, want default 5 for out of range", got)
		}
	})

	t.Run("String", func(t *testing.T) {
		p := Params{"s": "hello", "n": 3}
		if got := p.String("s", "x"); got != "hello" {
			t.Errorf("String(s) = %q", got)
		}
		if got := p.String("n", "x"); got != "x" {
			t.Errorf("String(n) = %q, want default", got)
		}
		if got := p.String("missing", "x"); got != "x" {
			t.Errorf("String(missing) = %q, want default", got)
		}
	})

	t.Run("decoded JSON bag", func(t *testing.T) {
		var p Params
		if err := json.Unmarshal([]byte(`{"brightness": 50, "text": "hi", "flag": true}`), &p); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got := p.Number("brightness", 0); got != 50 {
			t.Errorf("brightness = %v, want 50", got)
		}
		if got := p.String("text", ""); got != "hi" {
			t.Errorf("text = %q, want hi", got)
		}
	})
}

func TestParseAssignments(t *testing.T) {
	t.Run("typed values", func(t *testing.T) {
		p, err := ParseAssignments([]string{"brightness=50", "speed=1.5", "text=hello world", "loud=true", "empty="})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p["brightness"] != 50.0 {
			t.Errorf("brightness = %#v, want 50.0", p["brightness"])
		}
		if p["speed"] != 1.5 {
			t.Errorf("speed = %#v, want 1.5", p["speed"])
		}
		if p["text"] != "hello world" {
			t.Errorf("text = %#v", p["text"])
		}
		if p["loud"] != true {
			t.Errorf("loud = %#v, want true", p["loud"])
		}
		if p["empty"] != "" {
			t.Errorf("empty = %#v, want empty string", p["empty"])
		}
	})

	t.Run("value containing equals sign", func(t *testing.T) {
		p, err := ParseAssignments([]string{"text=a=b"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p["text"] != "a=b" {
			t.Errorf("text = %#v, want a=b", p["text"])
		}
	})

	t.Run("malformed", func(t *testing.T) {
		for _, bad := range []string{"novalue", "=5"} {
			if _, err := ParseAssignments([]string{bad}); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("ParseAssignments(%q) error = %v, want ErrInvalidArgument", bad, err)
			}
		}
	})

	t.Run("infinity stays a string", func(t *testing.T) {
		if v := ParseValue("inf"); v != "inf" {
			t.Errorf("ParseValue(inf) = %#v, want string", v)
		}
	})
}
