package operations

import (
	"fmt"
	"strings"

	"github.com/desertthunder/vidx/internal/shared"
)

// Kind is the closed set of supported transformations.
type Kind string

const (
	KindBrightness Kind = "brightness-adjust"
	KindSpeed      Kind = "speed-adjust"
	KindTrim       Kind = "trim"
	KindCrop       Kind = "crop"
	KindText       Kind = "text-overlay"
	KindStyle      Kind = "style-filter"
)

// aliases maps the camelCase names used by the HTTP API to canonical kinds.
var aliases = map[string]Kind{
	"adjustBrightness": KindBrightness,
	"adjustSpeed":      KindSpeed,
	"trimVideo":        KindTrim,
	"cropVideo":        KindCrop,
	"addText":          KindText,
	"applyFilter":      KindStyle,
}

// Kinds lists the canonical kinds in a stable order.
func Kinds() []Kind {
	return []Kind{KindBrightness, KindSpeed, KindTrim, KindCrop, KindText, KindStyle}
}

func (k Kind) String() string { return string(k) }

// ParseKind accepts a canonical kind or one of its API aliases.
func ParseKind(name string) (Kind, error) {
	name = strings.TrimSpace(name)
	if k, ok := aliases[name]; ok {
		return k, nil
	}
	for _, k := range Kinds() {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %s", shared.ErrUnsupportedOperation, name)
}
