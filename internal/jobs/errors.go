package jobs

import "strings"

// friendlyProviderMessage rewrites raw upstream failures the user can do
// nothing about into actionable copy. Anything unrecognized passes through
// unchanged.
func friendlyProviderMessage(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "resource_exhausted"),
		strings.Contains(lower, "quota"),
		strings.Contains(lower, "rate limit"),
		strings.Contains(lower, "too many requests"):
		return "The generation service is at capacity right now. Please try again in a few minutes."
	case strings.Contains(lower, "api key"),
		strings.Contains(lower, "api_key"),
		strings.Contains(lower, "permission_denied"),
		strings.Contains(lower, "unauthenticated"),
		strings.Contains(lower, "unauthorized"):
		return "Generation is temporarily unavailable. Please contact support."
	default:
		return raw
	}
}
