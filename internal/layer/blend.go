package layer

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownBlendOp = errors.New("layer: unknown blend op")

// BlendOp is how a layer combines with the layers below it.
type BlendOp uint8

const (
	BlendNormal BlendOp = iota
	BlendLinear
	BlendLighten
	BlendScreen
	BlendAdd
	BlendLinearAdd
	BlendColorDodge
	BlendDivide
	BlendNiceGlow
	BlendSoftLight
	BlendHardLight
	BlendGlow
	BlendReflect
	BlendOverlay
	BlendDarkOverlay
	BlendDarken
	BlendMultiply
	BlendColorBurn
	BlendDifference
	BlendLinearDifference
	BlendExclusion
	BlendLinearExclusion
	BlendSubtract
	BlendLinearSubtract
	BlendSubtractInverse
	BlendLinearSubtractInverse
	BlendNegation
	BlendLinearNegation
	BlendXor
	BlendMask
)

var blendTokens = []string{
	"Normal",
	"Linear",
	"Lighten",
	"Screen",
	"Add",
	"LinearAdd",
	"ColorDodge",
	"Divide",
	"NiceGlow",
	"SoftLight",
	"HardLight",
	"Glow",
	"Reflect",
	"Overlay",
	"DarkOverlay",
	"Darken",
	"Multiply",
	"ColorBurn",
	"Difference",
	"LinearDifference",
	"Exclusion",
	"LinearExclusion",
	"Subtract",
	"LinearSubtract",
	"SubtractInverse",
	"LinearSubtractInverse",
	"Negation",
	"LinearNegation",
	"Xor",
	"Mask",
}

func (b BlendOp) String() string {
	if int(b) < len(blendTokens) {
		return blendTokens[b]
	}
	return fmt.Sprintf("BlendOp(%d)", uint8(b))
}

func ParseBlendOp(s string) (BlendOp, error) {
	s = strings.TrimSpace(s)
	for i, tok := range blendTokens {
		if strings.EqualFold(tok, s) {
			return BlendOp(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBlendOp, s)
}

// TokenSets returns the blend op token set keyed the way a host validates
// it.
func TokenSets() map[string][]string {
	return map[string][]string{"BlendOp": append([]string(nil), blendTokens...)}
}
