package terminal

import (
	"fmt"
	"strconv"

	"github.com/muesli/termenv"
)

// ColorToX11 converts a termenv color into the X11 rgb:RRRR/GGGG/BBBB form
// used by OSC10/OSC11 replies when a client-side CLI answers a real color
// query on its own locally attached terminal (§11 DOMAIN STACK; the daemon
// itself always answers with the fixed values of §4.3.4). Grounded on
// internal/session/virtualterminal/util.go's ColorToX11.
func ColorToX11(c termenv.Color) string {
	if c == nil {
		return ""
	}
	if v, ok := c.(termenv.RGBColor); ok {
		hex := string(v)
		if len(hex) == 7 && hex[0] == '#' {
			r, _ := strconv.ParseUint(hex[1:3], 16, 8)
			g, _ := strconv.ParseUint(hex[3:5], 16, 8)
			b, _ := strconv.ParseUint(hex[5:7], 16, 8)
			return fmt.Sprintf("rgb:%04x/%04x/%04x", r*0x101, g*0x101, b*0x101)
		}
	}
	rgb := termenv.ConvertToRGB(c)
	r := uint8(rgb.R*255 + 0.5)
	g := uint8(rgb.G*255 + 0.5)
	b := uint8(rgb.B*255 + 0.5)
	return fmt.Sprintf("rgb:%04x/%04x/%04x", uint16(r)*0x101, uint16(g)*0x101, uint16(b)*0x101)
}
