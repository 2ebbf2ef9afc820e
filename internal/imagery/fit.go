package imagery

import (
	"image"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
)

// Fit scales img so its longer side is at most size, keeping the aspect
// ratio, and flips it vertically for a bottom-left texture origin.
func Fit(img image.Image, size int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if size > 0 && (w > size || h > size) {
		if w >= h {
			h = max(1, h*size/w)
			w = size
		} else {
			w = max(1, w*size/h)
			h = size
		}
		img = transform.Resize(img, w, h, transform.Linear)
	} else {
		img = clone.AsRGBA(img)
	}
	return transform.FlipV(img)
}
