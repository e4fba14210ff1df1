// Package vfx holds the static catalogue of camera/motion effect templates
// substitutable into generation prompts, plus the tolerant normalization that
// maps legacy client-supplied identifiers onto the current catalogue.
package vfx

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Snoop111/creative-ai-studio-demo/internal/domain"
)

// Template describes one named, predefined camera/motion effect.
type Template struct {
	ID                string
	Name              string
	Motion            string
	Modifier          string
	StyleTag          string
	SuggestedDuration int
}

// Registry resolves effect identifiers and camera movements. It is immutable
// after construction and safe for concurrent use.
type Registry struct {
	templates map[string]Template
	aliases   map[string]string
	cameras   map[string]string
}

// NewRegistry builds the default catalogue.
func NewRegistry() *Registry {
	r := &Registry{
		templates: make(map[string]Template, len(defaultTemplates)),
		aliases:   defaultAliases,
		cameras:   cameraPhrases,
	}
	titler := cases.Title(language.English)
	for _, t := range defaultTemplates {
		if t.Name == "" {
			t.Name = titler.String(strings.ReplaceAll(t.ID, "-", " "))
		}
		r.templates[t.ID] = t
	}
	return r
}

// Normalize case-folds and hyphen-normalizes an identifier, follows the alias
// table, and reports whether the result is a known template. Unknown
// identifiers resolve to "", false: callers treat that as "no VFX selected",
// never as an error, so stale client catalogues keep working.
func (r *Registry) Normalize(id string) (string, bool) {
	id = canonicalForm(id)
	if id == "" {
		return "", false
	}
	if target, ok := r.aliases[id]; ok {
		id = target
	}
	if _, ok := r.templates[id]; ok {
		return id, true
	}
	return "", false
}

// Describe returns the template for a canonical identifier.
func (r *Registry) Describe(canonicalID string) (Template, error) {
	t, ok := r.templates[canonicalID]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", domain.ErrUnknownTemplate, canonicalID)
	}
	return t, nil
}

// CameraPhrase converts a camera-movement identifier into prompt text. Known
// movements map to a curated phrase; anything else degrades to the identifier
// with hyphens replaced by spaces.
func (r *Registry) CameraPhrase(id string) string {
	id = canonicalForm(id)
	if id == "" {
		return ""
	}
	if phrase, ok := r.cameras[id]; ok {
		return phrase
	}
	return strings.ReplaceAll(id, "-", " ")
}

func canonicalForm(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	id = strings.NewReplacer("_", "-", " ", "-").Replace(id)
	for strings.Contains(id, "--") {
		id = strings.ReplaceAll(id, "--", "-")
	}
	return strings.Trim(id, "-")
}

var defaultTemplates = []Template{
	{
		ID:                "earth-zoom-out",
		Motion:            "camera pulls back from the subject, rising through clouds until the whole planet is visible",
		Modifier:          "dramatic earth zoom-out, continuous pull-back to orbit",
		StyleTag:          "epic",
		SuggestedDuration: 8,
	},
	{
		ID:                "dolly-zoom",
		Motion:            "camera dollies forward while the lens zooms out, warping the background around a locked subject",
		Modifier:          "vertigo dolly-zoom effect, background perspective warp",
		StyleTag:          "cinematic",
		SuggestedDuration: 5,
	},
	{
		ID:                "bullet-time",
		Motion:            "time freezes while the camera sweeps around the subject in a smooth arc",
		Modifier:          "frozen-moment bullet-time orbit",
		StyleTag:          "action",
		SuggestedDuration: 5,
	},
	{
		ID:                "crash-zoom",
		Motion:            "camera zooms in abruptly on the subject with slight handheld shake",
		Modifier:          "fast crash zoom punch-in",
		StyleTag:          "energetic",
		SuggestedDuration: 3,
	},
	{
		ID:                "fpv-flythrough",
		Motion:            "first-person drone camera weaves through the scene at speed, close to surfaces",
		Modifier:          "FPV drone flythrough, fast and fluid",
		StyleTag:          "dynamic",
		SuggestedDuration: 8,
	},
	{
		ID:                "crane-reveal",
		Motion:            "camera rises on a crane from a close detail to reveal the full scene",
		Modifier:          "slow crane-up reveal of the wider scene",
		StyleTag:          "cinematic",
		SuggestedDuration: 6,
	},
	{
		ID:                "orbit-360",
		Motion:            "camera circles the subject in a complete smooth orbit at constant height",
		Modifier:          "full 360 degree orbit around the subject",
		StyleTag:          "showcase",
		SuggestedDuration: 8,
	},
	{
		ID:                "timelapse-bloom",
		Motion:            "static camera while time accelerates, light and activity blooming around the subject",
		Modifier:          "timelapse with streaking light and accelerated motion",
		StyleTag:          "atmospheric",
		SuggestedDuration: 6,
	},
}

// Legacy identifiers kept resolvable for older clients.
var defaultAliases = map[string]string{
	"earthzoom":    "earth-zoom-out",
	"earth-zoom":   "earth-zoom-out",
	"zoom-to-orbit": "earth-zoom-out",
	"vertigo":      "dolly-zoom",
	"hitchcock":    "dolly-zoom",
	"matrix":       "bullet-time",
	"time-freeze":  "bullet-time",
	"drone":        "fpv-flythrough",
	"fpv":          "fpv-flythrough",
	"crane-up-reveal": "crane-reveal",
	"orbit":        "orbit-360",
	"timelapse":    "timelapse-bloom",
}

var cameraPhrases = map[string]string{
	"dolly-in":    "camera slowly dollies forward revealing the subject",
	"dolly-out":   "camera pulls back slowly from the subject",
	"orbit-left":  "camera orbits left around the subject",
	"orbit-right": "camera orbits right around the subject",
	"crane-up":    "crane shot moving upward from the subject",
	"crane-down":  "crane shot moving downward toward the subject",
	"pan-left":    "camera pans left across the scene",
	"pan-right":   "camera pans right across the scene",
}
