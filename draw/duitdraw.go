//go:build duitdraw || windows
// +build duitdraw windows

package draw

import (
	draw "github.com/ktye/duitdraw"
)

const (
	Refnone = draw.Refnone

	KeyDown     = draw.KeyDown
	KeyEnd      = draw.KeyEnd
	KeyHome     = draw.KeyHome
	KeyLeft     = draw.KeyLeft
	KeyPageDown = draw.KeyPageDown
	KeyPageUp   = draw.KeyPageUp
	KeyRight    = draw.KeyRight
	KeyUp       = draw.KeyUp

	Black       = draw.Black
	Notacolor   = draw.Notacolor
	Opaque      = draw.Opaque
	Paleyellow  = draw.Paleyellow
	Darkyellow  = draw.Darkyellow
	Transparent = draw.Transparent
	White       = draw.White
)

// RGBA32 is the pixel format for translucent colour tiles. duitdraw
// only predefines a few formats.
var RGBA32 = draw.MakePix(draw.CRed, 8, draw.CGreen, 8, draw.CBlue, 8, draw.CAlpha, 8)

type (
	Color       = draw.Color
	drawDisplay = draw.Display
	drawFont    = draw.Font
	drawImage   = draw.Image
	Keyboardctl = draw.Keyboardctl
	Mousectl    = draw.Mousectl
	Mouse       = draw.Mouse
	Pix         = draw.Pix
)

// Main runs f on duitdraw's device. Some window systems need this to
// happen on the main thread.
func Main(f func(*Device)) {
	draw.Main(func(dev *draw.Device) {
		f(&Device{dev})
	})
}

type Device struct {
	dev *draw.Device
}

func (dev *Device) NewDisplay(errch chan<- error, fontname, label, winsize string) (Display, error) {
	d, err := dev.dev.NewDisplay(errch, fontname, label, winsize)
	if err != nil {
		return nil, err
	}
	return &displayImpl{d}, nil
}
