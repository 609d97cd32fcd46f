// Package capture implements the agent.Capture reference backend (§6.3)
// over github.com/kbinani/screenshot, the cross-platform screen-grab
// library already present in the teacher's indirect dependency set.
package capture

import (
	"image"

	"github.com/kbinani/screenshot"

	"maple-bot"
)

// ScreenCapture grabs the configured display's bounds every tick.
type ScreenCapture struct {
	DisplayIndex int
	Bounds       image.Rectangle
}

// NewScreenCapture binds to displayIndex's full bounds.
func NewScreenCapture(displayIndex int) *ScreenCapture {
	return &ScreenCapture{
		DisplayIndex: displayIndex,
		Bounds:       screenshot.GetDisplayBounds(displayIndex),
	}
}

// Grab implements agent.Capture. A capture failure (display disconnected
// mid-run) is reported as ok=false so the tick loop skips without
// advancing FSMs (§4.1 step 1).
func (c *ScreenCapture) Grab() (agent.Frame, bool) {
	img, err := screenshot.CaptureRect(c.Bounds)
	if err != nil {
		return agent.Frame{}, false
	}
	return toBGRAFrame(img), true
}

// toBGRAFrame converts screenshot's RGBA image.Image into the BGRA byte
// layout agent.Frame documents (§6.3).
func toBGRAFrame(img *image.RGBA) agent.Frame {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pixels := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		r := img.Pix[i*4+0]
		g := img.Pix[i*4+1]
		bl := img.Pix[i*4+2]
		a := img.Pix[i*4+3]
		pixels[i*4+0] = bl
		pixels[i*4+1] = g
		pixels[i*4+2] = r
		pixels[i*4+3] = a
	}
	return agent.Frame{Width: w, Height: h, Pixels: pixels}
}
