package sketch

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/rs/zerolog/log"
	xdraw "golang.org/x/image/draw"
)

// Fast path bounds: when the input is already within 10% of the target size
// in both dimensions, a single high-quality resample beats the full
// scale-and-letterbox pipeline.
const (
	fastPathRatioMin = 0.9
	fastPathRatioMax = 1.1
)

// Preprocess normalizes a sketch onto the canvas resolved from ratioKey.
// The output is always exactly the target dimensions: the sketch is scaled to
// fit, never cropped, and the remainder is letterboxed with white.
//
// info is an optional analysis hint; when preserveQuality is false and the
// sketch is a line drawing, an edge-enhancement pass is applied after
// scaling. The input image is never modified.
func Preprocess(img image.Image, ratioKey string, info *Info, preserveQuality bool) *image.RGBA {
	target := ResolveCanvas(ratioKey)
	bounds := img.Bounds()
	origW, origH := bounds.Dx(), bounds.Dy()

	// Fast path: close enough to target to resample directly.
	if preserveQuality {
		ratio := math.Min(float64(origW)/float64(target.Width), float64(origH)/float64(target.Height))
		if ratio >= fastPathRatioMin && ratio <= fastPathRatioMax {
			log.Debug().
				Int("orig_width", origW).
				Int("orig_height", origH).
				Int("target_width", target.Width).
				Int("target_height", target.Height).
				Float64("size_ratio", ratio).
				Msg("Sketch close to target size, resampling directly")
			return resample(img, target.Width, target.Height)
		}
	}

	scale := math.Min(float64(target.Width)/float64(origW), float64(target.Height)/float64(origH))
	newW := int(math.Round(float64(origW) * scale))
	newH := int(math.Round(float64(origH) * scale))

	resized := resample(img, newW, newH)

	if !preserveQuality && info != nil && info.Type == TypeLineDrawing {
		resized = enhanceEdges(resized)
	}

	// White canvas, sketch centered. Integer division floors the offsets.
	canvas := image.NewRGBA(image.Rect(0, 0, target.Width, target.Height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	xOffset := (target.Width - newW) / 2
	yOffset := (target.Height - newH) / 2
	paste := image.Rect(xOffset, yOffset, xOffset+newW, yOffset+newH)
	draw.Draw(canvas, paste, resized, resized.Bounds().Min, draw.Src)

	log.Debug().
		Int("orig_width", origW).
		Int("orig_height", origH).
		Float64("scale", scale).
		Int("scaled_width", newW).
		Int("scaled_height", newH).
		Int("x_offset", xOffset).
		Int("y_offset", yOffset).
		Str("ratio", ratioKey).
		Msg("Sketch normalized onto canvas")

	return canvas
}

// resample scales an image to exactly (w, h) with a high-quality filter.
func resample(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// FitWithin scales an image down so both dimensions fit within maxDim,
// preserving aspect ratio. Images already within the bound are returned
// unchanged.
func FitWithin(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	var newW, newH int
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}

	return resample(img, newW, newH)
}
