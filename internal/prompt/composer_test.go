package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/Snoop111/creative-ai-studio-demo/internal/domain"
	"github.com/Snoop111/creative-ai-studio-demo/internal/vfx"
)

func newComposer() *Composer {
	return NewComposer(vfx.NewRegistry())
}

func TestComposeDeterministic(t *testing.T) {
	c := newComposer()
	in := Input{
		RawPrompt:       "a car on a coastal road",
		VFX:             "earth-zoom-out",
		StylePresets:    map[string]string{"lighting": "golden hour", "mood": "warm"},
		Modality:        domain.ModalityVideo,
		Provider:        "veo",
		DurationSeconds: 8,
		AspectRatio:     "16:9",
	}
	first, err := c.Compose(in)
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := c.Compose(in)
		if err != nil {
			t.Fatalf("Compose returned error: %v", err)
		}
		if again.Text != first.Text {
			t.Fatalf("composition not deterministic:\n%s\n%s", first.Text, again.Text)
		}
	}
}

func TestComposeVFXWinsOverCamera(t *testing.T) {
	c := newComposer()
	out, err := c.Compose(Input{
		RawPrompt:       "a watch on a marble table",
		VFX:             "earth-zoom-out",
		CameraMovement:  "dolly-in",
		Modality:        domain.ModalityVideo,
		Provider:        "veo",
		DurationSeconds: 8,
	})
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}
	if !strings.Contains(out.Text, "earth zoom-out") {
		t.Errorf("prompt missing VFX phrase: %s", out.Text)
	}
	if strings.Contains(out.Text, "dollies forward") {
		t.Errorf("camera phrase must be suppressed when a VFX is active: %s", out.Text)
	}
	for _, layer := range out.Layers {
		if strings.HasPrefix(layer, "camera:") {
			t.Errorf("camera layer recorded despite VFX precedence: %v", out.Layers)
		}
	}
}

func TestComposeReferencesWithVFXOmitMotionFiller(t *testing.T) {
	c := newComposer()
	out, err := c.Compose(Input{
		RawPrompt:             "the product on a kitchen counter",
		VFX:                   "crane-reveal",
		ReferenceDescriptions: []string{"hero product shot, studio lighting"},
		Modality:              domain.ModalityVideo,
		Provider:              "veo",
		DurationSeconds:       6,
	})
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}
	if strings.Contains(out.Text, motionFiller) {
		t.Errorf("motion filler must be omitted when a directive is present: %s", out.Text)
	}
	if !strings.Contains(out.Text, "preserve the exact subject identity") {
		t.Errorf("reference guidance missing: %s", out.Text)
	}
}

func TestComposeReferencesWithoutDirectiveAddFiller(t *testing.T) {
	c := newComposer()
	out, err := c.Compose(Input{
		RawPrompt:             "the product on a kitchen counter",
		ReferenceDescriptions: []string{"hero product shot"},
		Modality:              domain.ModalityVideo,
		Provider:              "veo",
		DurationSeconds:       5,
	})
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}
	if !strings.Contains(out.Text, motionFiller) {
		t.Errorf("motion filler expected on image-conditioned path without directives: %s", out.Text)
	}
}

func TestComposeReferenceClauseBounded(t *testing.T) {
	c := newComposer()
	long := strings.Repeat("an extremely detailed description of the asset ", 40)
	out, err := c.Compose(Input{
		RawPrompt:             "x",
		ReferenceDescriptions: []string{long, long},
		Modality:              domain.ModalityImage,
		Provider:              "gemini-image",
	})
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}
	for _, part := range strings.Split(out.Text, ", ") {
		if strings.HasPrefix(part, "preserve the exact subject identity") && len(part) > maxReferenceClause {
			t.Errorf("reference clause exceeds bound: %d chars", len(part))
		}
	}
}

func TestComposeUnknownVFXFallsBackToCamera(t *testing.T) {
	c := newComposer()
	out, err := c.Compose(Input{
		RawPrompt:       "a city street at night",
		VFX:             "totally-made-up",
		CameraMovement:  "pan-left",
		Modality:        domain.ModalityVideo,
		Provider:        "veo",
		DurationSeconds: 5,
	})
	if err != nil {
		t.Fatalf("unknown VFX must not fail composition: %v", err)
	}
	if !strings.Contains(out.Text, "camera pans left across the scene") {
		t.Errorf("expected camera fallback: %s", out.Text)
	}
}

func TestComposeEmptyPromptNoDirectives(t *testing.T) {
	c := newComposer()
	_, err := c.Compose(Input{RawPrompt: "  ", Modality: domain.ModalityImage, Provider: "gemini-image"})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("error = %v, want ErrInvalidRequest", err)
	}
}

func TestComposeImageStyleBoilerplate(t *testing.T) {
	c := newComposer()
	out, err := c.Compose(Input{RawPrompt: "a bowl of dried mango", Modality: domain.ModalityImage, Provider: "gemini-image"})
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}
	if !strings.Contains(out.Text, "professional photography") {
		t.Errorf("gemini style boilerplate missing: %s", out.Text)
	}

	out, err = c.Compose(Input{RawPrompt: "a bowl of dried mango", Modality: domain.ModalityImage, Provider: "qwen-image"})
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}
	if !strings.Contains(out.Text, "photorealistic, commercial quality") {
		t.Errorf("qwen style boilerplate missing: %s", out.Text)
	}
}

func TestComposeVideoTechnicalSuffix(t *testing.T) {
	c := newComposer()
	out, err := c.Compose(Input{
		RawPrompt:       "a car on a coastal road",
		Modality:        domain.ModalityVideo,
		Provider:        "veo",
		DurationSeconds: 8,
		AspectRatio:     "16:9",
	})
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}
	if !strings.Contains(out.Text, "8 second duration, 16:9 aspect ratio") {
		t.Errorf("technical suffix missing: %s", out.Text)
	}
	if !strings.Contains(out.Text, "no text or logos") {
		t.Errorf("technical suffix missing negative clause: %s", out.Text)
	}
}
