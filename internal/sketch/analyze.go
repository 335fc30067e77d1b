package sketch

import (
	"image"

	"github.com/rs/zerolog/log"
)

// SketchType classifies a sketch by its mean brightness.
//
// The labels are historical: "colored" denotes a low-brightness sketch, not
// the presence of hue. A saturated but bright drawing still classifies as
// line_drawing. Downstream prompt templates depend on these exact labels, so
// they are kept as-is.
type SketchType string

const (
	TypeLineDrawing SketchType = "line_drawing"
	TypeShaded      SketchType = "shaded"
	TypeColored     SketchType = "colored"
)

// DetailLevel classifies a sketch by its edge density.
type DetailLevel string

const (
	DetailSimple       DetailLevel = "simple"
	DetailDetailed     DetailLevel = "detailed"
	DetailVeryDetailed DetailLevel = "very_detailed"
)

// Edge detection double-threshold pair applied to Sobel gradient magnitudes.
const (
	EdgeThresholdLow  = 50
	EdgeThresholdHigh = 150
)

// Info holds the detected characteristics of a sketch. It is derived purely
// from pixel data and never mutated after Analyze returns.
type Info struct {
	Type          SketchType
	Detail        DetailLevel
	IsColored     bool
	MeanIntensity float64
	EdgeDensity   float64
}

// Analyze inspects a decoded sketch and derives its classification metadata.
// Pure function of the pixel data; the input image is not modified.
func Analyze(img image.Image) Info {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	luma := toLuminance(img)
	isColored := hasColorChannels(img)

	var sum uint64
	for _, v := range luma {
		sum += uint64(v)
	}
	mean := float64(sum) / float64(len(luma))

	edges := detectEdges(luma, w, h, EdgeThresholdLow, EdgeThresholdHigh)
	edgeCount := 0
	for _, e := range edges {
		if e {
			edgeCount++
		}
	}
	density := float64(edgeCount) / float64(w*h)

	info := Info{
		IsColored:     isColored,
		MeanIntensity: mean,
		EdgeDensity:   density,
	}

	switch {
	case mean > 200: // very bright
		info.Type = TypeLineDrawing
	case mean > 150:
		info.Type = TypeShaded
	default:
		info.Type = TypeColored
	}

	switch {
	case density < 0.05:
		info.Detail = DetailSimple
	case density < 0.15:
		info.Detail = DetailDetailed
	default:
		info.Detail = DetailVeryDetailed
	}

	log.Debug().
		Str("sketch_type", string(info.Type)).
		Str("detail_level", string(info.Detail)).
		Bool("is_colored", info.IsColored).
		Float64("mean_intensity", info.MeanIntensity).
		Float64("edge_density", info.EdgeDensity).
		Msg("Sketch analyzed")

	return info
}

// hasColorChannels reports whether the source raster carries more than a
// single luminance channel.
func hasColorChannels(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return false
	default:
		return true
	}
}

// toLuminance converts an image to a single-channel luminance buffer in
// row-major order using Rec. 601 weights.
func toLuminance(img image.Image) []uint8 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	// Fast path for already-grayscale rasters.
	if gray, ok := img.(*image.Gray); ok && gray.Stride == w {
		out := make([]uint8, w*h)
		copy(out, gray.Pix)
		return out
	}

	out := make([]uint8, 0, w*h)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// 16-bit channel values; Rec. 601 luma in fixed point.
			l := (299*r + 587*g + 114*b) / 1000
			out = append(out, uint8(l>>8))
		}
	}
	return out
}

// detectEdges runs a Sobel gradient pass with double thresholding: pixels at
// or above high are edges, pixels between low and high are kept only when
// 8-connected to a strong edge. Border pixels are never edges.
func detectEdges(luma []uint8, w, h, low, high int) []bool {
	if w < 3 || h < 3 {
		return make([]bool, w*h)
	}

	mag := make([]int, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			gx := -int(luma[i-w-1]) + int(luma[i-w+1]) +
				-2*int(luma[i-1]) + 2*int(luma[i+1]) +
				-int(luma[i+w-1]) + int(luma[i+w+1])
			gy := -int(luma[i-w-1]) - 2*int(luma[i-w]) - int(luma[i-w+1]) +
				int(luma[i+w-1]) + 2*int(luma[i+w]) + int(luma[i+w+1])
			if gx < 0 {
				gx = -gx
			}
			if gy < 0 {
				gy = -gy
			}
			mag[i] = gx + gy
		}
	}

	strong := make([]bool, w*h)
	for i, m := range mag {
		strong[i] = m >= high
	}

	edges := make([]bool, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			if strong[i] {
				edges[i] = true
				continue
			}
			if mag[i] < low {
				continue
			}
			// Weak edge: keep only with a strong 8-neighbor.
			if strong[i-w-1] || strong[i-w] || strong[i-w+1] ||
				strong[i-1] || strong[i+1] ||
				strong[i+w-1] || strong[i+w] || strong[i+w+1] {
				edges[i] = true
			}
		}
	}
	return edges
}
