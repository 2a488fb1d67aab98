package operations

import (
	"fmt"
	"strconv"
	"strings"
)

// Style presets selected by style-filter.
const (
	presetCinematic = "eq=contrast=1.2:brightness=0.1:saturation=1.1,curves=all='0/0 0.5/0.58 1/1'"
	presetVintage   = "eq=contrast=0.9:brightness=0.05:saturation=0.8," +
		"colorchannelmixer=.393:.769:.189:0:.349:.686:.168:0:.272:.534:.131"
	presetGeneric = "eq=contrast=1.1:brightness=0.05"
)

// Vertical drawtext offsets for text-overlay positions.
const (
	textTop    = "50"
	textBottom = "h-th-50"
	textCenter = "(h-th)/2"
)

// formatNumber renders v with the fewest digits that round-trip ("0.5", "10", "-3").
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func brightnessArgs(c BrightnessConfig) []string {
	return []string{"-vf", "eq=brightness=" + formatNumber(c.Brightness/100)}
}

func speedArgs(c SpeedConfig) []string {
	return []string{
		"-vf", "setpts=" + formatNumber(1/c.Speed) + "*PTS",
		"-af", "atempo=" + formatNumber(c.Speed),
	}
}

func trimArgs(c TrimConfig) []string {
	args := []string{"-ss", formatNumber(c.Start)}
	if d, ok := c.Duration(); ok {
		args = append(args, "-t", formatNumber(d))
	}
	return args
}

func cropArgs(c CropConfig) []string {
	return []string{"-vf", fmt.Sprintf("crop=%d:%d:%d:%d", c.Width, c.Height, c.X, c.Y)}
}

func textArgs(c TextConfig) []string {
	y := textCenter
	switch c.Position {
	case "top":
		y = textTop
	case "bottom":
		y = textBottom
	}

	filter := fmt.Sprintf("drawtext=text=%s:fontcolor=white:fontsize=24:x=(w-tw)/2:y=%s", EscapeDrawtext(c.Text), y)
	return []string{"-vf", filter}
}

func styleArgs(c StyleConfig) []string {
	switch c.Filter {
	case "cinematic":
		return []string{"-vf", presetCinematic}
	case "vintage":
		return []string{"-vf", presetVintage}
	default:
		return []string{"-vf", presetGeneric}
	}
}

var (
	expansionEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`)
	optionEscaper    = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`)
	graphEscaper     = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `[`, `\[`, `]`, `\]`, `,`, `\,`, `;`, `\;`)
)

// EscapeDrawtext makes s safe as the value of drawtext's text option inside a -vf filtergraph.
//
// ffmpeg unescapes the value three times (filtergraph, filter options, text expansion), so the
// escapes are applied in the reverse order. Control characters are replaced with spaces.
func EscapeDrawtext(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, s)
	return graphEscaper.Replace(optionEscaper.Replace(expansionEscaper.Replace(s)))
}
