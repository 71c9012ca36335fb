package prefs

import (
	"fmt"
	"strconv"
	"strings"
)

// HexToHSL converts a hex color to the "H S% L%" triple consumed by the
// UI theme variables. Three-digit shorthand is expanded; anything that is
// not a valid hex color is an error.
func HexToHSL(hex string) (string, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		var sb strings.Builder
		for _, ch := range hex {
			sb.WriteRune(ch)
			sb.WriteRune(ch)
		}
		hex = sb.String()
	}
	if len(hex) != 6 {
		return "", fmt.Errorf("invalid hex color %q", hex)
	}

	parse := func(s string) (float64, error) {
		v, err := strconv.ParseUint(s, 16, 8)
		if err != nil {
			return 0, fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		return float64(v) / 255, nil
	}

	r, err := parse(hex[0:2])
	if err != nil {
		return "", err
	}
	g, err := parse(hex[2:4])
	if err != nil {
		return "", err
	}
	b, err := parse(hex[4:6])
	if err != nil {
		return "", err
	}

	max := r
	if g > max {
		max = g
	}
	if b > max {
		max = b
	}
	min := r
	if g < min {
		min = g
	}
	if b < min {
		min = b
	}

	h, s := 0.0, 0.0
	l := (max + min) / 2

	if max != min {
		d := max - min
		if l > 0.5 {
			s = d / (2 - max - min)
		} else {
			s = d / (max + min)
		}
		switch max {
		case r:
			h = (g - b) / d
			if g < b {
				h += 6
			}
		case g:
			h = (b-r)/d + 2
		case b:
			h = (r-g)/d + 4
		}
		h /= 6
	}

	return fmt.Sprintf("%.1f %.1f%% %.1f%%", h*360, s*100, l*100), nil
}
