package badge

import (
	"fmt"

	"github.com/insper-comp/compiler-tester/pkg/domain/types"
)

const (
	colorPassing = "#4c1"
	colorFailing = "#e05d44"
	colorUnknown = "#9f9f9f"

	labelWidth = 60
	charWidth  = 7
	height     = 20
)

// StatusText maps a recorded test status to the badge value segment.
func StatusText(status types.TestStatus) string {
	switch status {
	case types.TestStatusPass:
		return "passing"
	case types.TestStatusFailed, types.TestStatusError:
		return "failing"
	default:
		return "unknown"
	}
}

// Render produces a flat shields-style SVG for the given status. Pure
// function: status in, image bytes out.
func Render(status types.TestStatus) []byte {
	text := StatusText(status)

	color := colorUnknown
	switch status {
	case types.TestStatusPass:
		color = colorPassing
	case types.TestStatusFailed, types.TestStatusError:
		color = colorFailing
	}

	valueWidth := len(text)*charWidth + 10
	total := labelWidth + valueWidth

	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">
<linearGradient id="a" x2="0" y2="100%%">
    <stop offset="0" stop-color="#bbb" stop-opacity=".1"/>
    <stop offset="1" stop-opacity=".1"/>
</linearGradient>
<rect rx="3" width="%d" height="%d" fill="#555"/>
<rect rx="3" x="%d" width="%d" height="%d" fill="%s"/>
<rect rx="3" width="%d" height="%d" fill="url(#a)"/>
<g fill="#fff" text-anchor="middle" font-family="DejaVu Sans,Verdana,Geneva,sans-serif" font-size="11">
    <text x="%d" y="14">build</text>
    <text x="%d" y="14">%s</text>
</g>
</svg>`,
		total, height,
		total, height,
		labelWidth, valueWidth, height, color,
		total, height,
		labelWidth/2,
		labelWidth+valueWidth/2, text,
	)

	return []byte(svg)
}
