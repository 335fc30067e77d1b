package sketch

// CanvasTarget is the pixel size a sketch is normalized into.
type CanvasTarget struct {
	Width  int
	Height int
}

// DefaultCanvas is used for unknown aspect-ratio keys.
var DefaultCanvas = CanvasTarget{Width: 1920, Height: 1080}

// supportedAspectRatios maps ratio labels to output canvas sizes.
var supportedAspectRatios = map[string]CanvasTarget{
	"16:9": {1920, 1080},
	"9:16": {1080, 1920},
	"1:1":  {1080, 1080},
	"4:3":  {1440, 1080},
	"3:4":  {1080, 1440},
	"21:9": {2560, 1080},
}

// ResolveCanvas maps an aspect-ratio label to its canvas size, falling back
// to DefaultCanvas for unknown labels.
func ResolveCanvas(ratioKey string) CanvasTarget {
	if target, ok := supportedAspectRatios[ratioKey]; ok {
		return target
	}
	return DefaultCanvas
}

// SupportedRatios returns the known aspect-ratio labels.
func SupportedRatios() []string {
	keys := make([]string, 0, len(supportedAspectRatios))
	for k := range supportedAspectRatios {
		keys = append(keys, k)
	}
	return keys
}
