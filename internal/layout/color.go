package layout

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidColor = errors.New("invalid hex color")

// RGB is a color with channels in [0, 1].
type RGB struct {
	R, G, B float64
}

// Bytes converts the channels to the 0-255 range used by fpdf.
func (c RGB) Bytes() (r, g, b int) {
	return toByte(c.R), toByte(c.G), toByte(c.B)
}

func toByte(v float64) int {
	return int(math.Round(v * 255))
}

// HexToRGB parses "#RRGGBB" (the leading '#' is optional).
func HexToRGB(hex string) (RGB, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	return RGB{
		R: float64((v>>16)&0xFF) / 255,
		G: float64((v>>8)&0xFF) / 255,
		B: float64(v&0xFF) / 255,
	}, nil
}
