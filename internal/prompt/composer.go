// Package prompt assembles the final provider instruction from the layered
// directives of a generation request. Composition is pure and deterministic:
// the same input always yields the same text, which the rest of the system
// relies on for caching and testing.
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Snoop111/creative-ai-studio-demo/internal/domain"
	"github.com/Snoop111/creative-ai-studio-demo/internal/vfx"
)

// Reference guidance is capped so downstream providers do not silently
// truncate the tail of the prompt.
const maxReferenceClause = 600

const motionFiller = "add subtle natural motion to the scene"

// Style boilerplate appended for image providers.
var imageStyleSuffix = map[string]string{
	"gemini-image": "professional photography, detailed, sharp focus",
	"qwen-image":   "photorealistic, commercial quality",
}

// Input carries every directive layer the composer considers.
type Input struct {
	RawPrompt             string
	VFX                   string
	CameraMovement        string
	StylePresets          map[string]string
	ReferenceDescriptions []string
	Modality              domain.Modality
	Provider              string
	DurationSeconds       int
	AspectRatio           string
}

// Composed is the final instruction string plus the audit trail of which
// layers produced it. Never mutated after creation.
type Composed struct {
	Text   string
	Layers []string
}

// Composer layers directives into one instruction string.
type Composer struct {
	registry *vfx.Registry
}

func NewComposer(registry *vfx.Registry) *Composer {
	return &Composer{registry: registry}
}

// Compose builds the final prompt. The raw prompt may be empty only when at
// least one directive is present. When both a VFX and a camera movement are
// supplied the VFX wins and the camera movement is suppressed.
func (c *Composer) Compose(in Input) (Composed, error) {
	raw := strings.TrimSpace(in.RawPrompt)
	vfxID, hasVFX := c.registry.Normalize(in.VFX)
	camera := strings.TrimSpace(in.CameraMovement)

	if raw == "" && !hasVFX && camera == "" {
		return Composed{}, fmt.Errorf("%w: empty prompt with no directives", domain.ErrInvalidRequest)
	}

	var parts, layers []string
	if raw != "" {
		parts = append(parts, raw)
		layers = append(layers, "prompt")
	}

	if clause := referenceClause(in.ReferenceDescriptions); clause != "" {
		parts = append(parts, clause)
		layers = append(layers, "reference_guidance")
	}

	hasDirective := false
	switch {
	case hasVFX:
		tpl, err := c.registry.Describe(vfxID)
		if err != nil {
			return Composed{}, err
		}
		parts = append(parts, tpl.Modifier)
		layers = append(layers, "vfx:"+vfxID)
		hasDirective = true
	case camera != "":
		parts = append(parts, c.registry.CameraPhrase(camera))
		layers = append(layers, "camera:"+camera)
		hasDirective = true
	}

	// Image-conditioned video with no directive of its own still needs the
	// provider told to animate the frame; with a directive present the filler
	// would conflict with the requested motion.
	if in.Modality == domain.ModalityVideo && len(in.ReferenceDescriptions) > 0 && !hasDirective {
		parts = append(parts, motionFiller)
		layers = append(layers, "motion_filler")
	}

	if clause := styleClause(in.StylePresets); clause != "" {
		parts = append(parts, clause)
		layers = append(layers, "style_presets")
	}

	switch in.Modality {
	case domain.ModalityVideo:
		parts = append(parts, technicalSuffix(in.DurationSeconds, in.AspectRatio))
		layers = append(layers, "technical_suffix")
	case domain.ModalityImage:
		if suffix, ok := imageStyleSuffix[in.Provider]; ok {
			parts = append(parts, suffix)
			layers = append(layers, "style_boilerplate")
		}
	}

	return Composed{Text: strings.Join(parts, ", "), Layers: layers}, nil
}

func referenceClause(descriptions []string) string {
	if len(descriptions) == 0 {
		return ""
	}
	clause := "preserve the exact subject identity, wardrobe and setting shown in the reference imagery (" +
		strings.Join(descriptions, "; ") + ")"
	if len(clause) > maxReferenceClause {
		clause = clause[:maxReferenceClause-1] + ")"
	}
	return clause
}

func styleClause(presets map[string]string) string {
	if len(presets) == 0 {
		return ""
	}
	keys := make([]string, 0, len(presets))
	for k := range presets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := strings.TrimSpace(presets[k]); v != "" {
			parts = append(parts, k+": "+v)
		}
	}
	return strings.Join(parts, ", ")
}

func technicalSuffix(durationSeconds int, aspectRatio string) string {
	if aspectRatio == "" {
		aspectRatio = "16:9"
	}
	return fmt.Sprintf("%d second duration, %s aspect ratio, 24fps, cinematic quality, no text or logos",
		durationSeconds, aspectRatio)
}
