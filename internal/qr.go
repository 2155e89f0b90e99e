package internal

import (
	"fmt"
	"strings"

	"golang.org/x/term"
	"rsc.io/qr"
)

// qrQuiet is the quiet-zone width in modules around the symbol.
const qrQuiet = 2

// RenderQR encodes text as a QR code and renders it with Unicode half blocks,
// two module rows per terminal line. Dark modules are drawn as light cells
// when invert is true, which scans better on dark terminal themes.
func RenderQR(text string, invert bool) (string, error) {
	code, err := qr.Encode(text, qr.M)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR: %w", err)
	}

	dark := func(x, y int) bool {
		return code.Black(x, y) != invert
	}

	var b strings.Builder
	for y := -qrQuiet; y < code.Size+qrQuiet; y += 2 {
		for x := -qrQuiet; x < code.Size+qrQuiet; x++ {
			top, bottom := dark(x, y), dark(x, y+1)
			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// QRWidth returns the rendered width in columns of the QR code for text.
func QRWidth(text string) (int, error) {
	code, err := qr.Encode(text, qr.M)
	if err != nil {
		return 0, fmt.Errorf("failed to encode QR: %w", err)
	}
	return code.Size + 2*qrQuiet, nil
}

// FitsTerminal reports whether a block of the given width fits the terminal
// on fd. Non-terminals always fit.
func FitsTerminal(fd, width int) bool {
	if !term.IsTerminal(fd) {
		return true
	}
	cols, _, err := term.GetSize(fd)
	if err != nil || cols <= 0 {
		return true
	}
	return width <= cols
}
