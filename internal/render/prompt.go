package render

import (
	"fmt"
	"strings"

	"github.com/fpang/sketch-render/internal/sketch"
)

// sketchTypeDescriptions translates classification labels into prompt
// language the model acts on well. The "colored" label means low brightness,
// not hue; the description reflects that.
var sketchTypeDescriptions = map[sketch.SketchType]string{
	sketch.TypeLineDrawing: "a clean line drawing on bright paper",
	sketch.TypeShaded:      "a shaded pencil sketch with mid-tone values",
	sketch.TypeColored:     "a dense, heavily worked sketch with dark coverage",
}

var detailDescriptions = map[sketch.DetailLevel]string{
	sketch.DetailSimple:       "simple, with a few broad strokes",
	sketch.DetailDetailed:     "moderately detailed",
	sketch.DetailVeryDetailed: "very detailed with dense line work",
}

// BuildPrompt assembles the rendering prompt: the user's instruction, the
// detected sketch characteristics, and any capture metadata from the scan.
func BuildPrompt(instruction string, info sketch.Info, capture *sketch.CaptureInfo) string {
	var sb strings.Builder

	sb.WriteString("## Sketch Rendering Task\n\n")
	sb.WriteString("Transform the attached hand-drawn sketch into a finished, high-quality image. ")
	sb.WriteString("Preserve the composition, proportions, and placement of every element in the sketch.\n\n")

	sb.WriteString("### Instruction\n\n")
	sb.WriteString(strings.TrimSpace(instruction))
	sb.WriteString("\n\n")

	sb.WriteString("### Sketch Characteristics\n\n")
	sb.WriteString(fmt.Sprintf("- Style: %s\n", sketchTypeDescriptions[info.Type]))
	sb.WriteString(fmt.Sprintf("- Detail: %s\n", detailDescriptions[info.Detail]))
	if info.IsColored {
		sb.WriteString("- The sketch carries color information; treat its hues as intentional.\n")
	} else {
		sb.WriteString("- The sketch is monochrome; choose colors appropriate to the instruction.\n")
	}

	if capture != nil {
		sb.WriteString("\n### Capture Info\n\n")
		if capture.CameraMake != "" || capture.CameraModel != "" {
			sb.WriteString(fmt.Sprintf("- Scanned or photographed with: %s %s\n",
				capture.CameraMake, capture.CameraModel))
		}
		if capture.HasDate {
			sb.WriteString(fmt.Sprintf("- Captured: %s\n",
				capture.DateTaken.Format("Monday, January 2, 2006")))
		}
	}

	return sb.String()
}
