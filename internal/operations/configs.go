package operations

// Defaults applied when a parameter is missing or unusable.
const (
	DefaultBrightness = 0.0
	DefaultSpeed      = 1.0
	DefaultStartTime  = 0.0
	DefaultCropX      = 0
	DefaultCropY      = 0
	DefaultCropWidth  = 1920
	DefaultCropHeight = 1080
	DefaultText       = "Sample Text"
	DefaultPosition   = "center"
	DefaultStyle      = "cinematic"
)

// BrightnessConfig configures brightness-adjust. Brightness is in percent; 100 maps to eq=brightness=1.
type BrightnessConfig struct {
	Brightness float64
}

func resolveBrightness(p Params) BrightnessConfig {
	return BrightnessConfig{Brightness: p.Number("brightness", DefaultBrightness)}
}

// SpeedConfig configures speed-adjust. Speed is a playback multiplier.
type SpeedConfig struct {
	Speed float64
}

// Non-positive speeds cannot be inverted into a timestamp scale and fall back to the default.
func resolveSpeed(p Params) SpeedConfig {
	speed := p.Number("speed", DefaultSpeed)
	if speed <= 0 {
		speed = DefaultSpeed
	}
	return SpeedConfig{Speed: speed}
}

// TrimConfig configures trim. A nil End runs to the end of the source.
type TrimConfig struct {
	Start float64
	End   *float64
}

func resolveTrim(p Params) TrimConfig {
	cfg := TrimConfig{Start: p.Number("startTime", DefaultStartTime)}
	if end, ok := p.OptionalNumber("endTime"); ok {
		cfg.End = &end
	}
	return cfg
}

// Duration reports the extraction length and whether one applies.
func (c TrimConfig) Duration() (float64, bool) {
	if c.End == nil {
		return 0, false
	}
	return *c.End - c.Start, true
}

// CropConfig configures crop in pixels.
type CropConfig struct {
	X, Y          int
	Width, Height int
}

func resolveCrop(p Params) CropConfig {
	return CropConfig{
		X:      p.Integer("x", DefaultCropX),
		Y:      p.Integer("y", DefaultCropY),
		Width:  p.Integer("width", DefaultCropWidth),
		Height: p.Integer("height", DefaultCropHeight),
	}
}

// TextConfig configures text-overlay. Position is "top", "bottom" or anything else for centered.
type TextConfig struct {
	Text     string
	Position string
}

func resolveText(p Params) TextConfig {
	return TextConfig{
		Text:     p.String("text", DefaultText),
		Position: p.String("position", DefaultPosition),
	}
}

// StyleConfig configures style-filter. Unknown names select the generic preset.
type StyleConfig struct {
	Filter string
}

func resolveStyle(p Params) StyleConfig {
	return StyleConfig{Filter: p.String("filter", DefaultStyle)}
}
