package domain

import "testing"

func TestJobStateTransitions(t *testing.T) {
	cases := []struct {
		from, to JobState
		want     bool
	}{
		{JobStateCreated, JobStateDispatched, true},
		{JobStateCreated, JobStateProcessing, true},
		{JobStateDispatched, JobStateProcessing, true},
		{JobStateProcessing, JobStateProcessing, true},
		{JobStateProcessing, JobStateCompleted, true},
		{JobStateDispatched, JobStateFailed, true},
		{JobStateCompleted, JobStateProcessing, false},
		{JobStateCompleted, JobStateFailed, false},
		{JobStateFailed, JobStateCompleted, false},
		{JobStateDispatched, JobStateCreated, false},
		{JobStateProcessing, JobStateDispatched, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.want {
			t.Errorf("%s -> %s = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestValidateRequest(t *testing.T) {
	base := GenerationRequest{
		Modality:        ModalityVideo,
		Provider:        "veo",
		ClientID:        "dfsa",
		Prompt:          "a car on a coastal road",
		DurationSeconds: 8,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	noPrompt := base
	noPrompt.Prompt = "   "
	if err := noPrompt.Validate(); err == nil {
		t.Error("empty prompt without directives should be rejected")
	}

	// An empty prompt is acceptable when a directive carries the instruction.
	noPrompt.VFX = "earth-zoom-out"
	if err := noPrompt.Validate(); err != nil {
		t.Errorf("empty prompt with VFX directive rejected: %v", err)
	}

	img := base
	img.Modality = ModalityImage
	img.DurationSeconds = 0
	img.Quantity = 0
	if err := img.Validate(); err == nil {
		t.Error("image request without quantity should be rejected")
	}
}
