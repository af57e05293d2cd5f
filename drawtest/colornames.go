package drawtest

import (
	"fmt"

	"github.com/jesedit/gutter/draw"
)

var colournames = map[draw.Color]string{
	draw.Black:       "Black",
	draw.White:       "White",
	draw.Darkyellow:  "Darkyellow",
	draw.Paleyellow:  "Paleyellow",
	draw.Transparent: "Transparent",
}

// NiceColourName returns a readable name for num. Colours without a
// name print as their hex value so that translucent tiles stay
// distinguishable in recorded ops.
func NiceColourName(num draw.Color) string {
	if s, ok := colournames[num]; ok {
		return s
	}
	return fmt.Sprintf("color(%08x)", uint32(num))
}
