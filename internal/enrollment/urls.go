package enrollment

import "net/url"

// Redirect targets are app-relative paths; the Gateway rewrites them to
// absolute URLs for the client.

// programURL is the landing page for a program under a coach's public slug.
func programURL(slug, programID string) string {
	return "/" + slug + "/programs/" + programID
}

// onboardingURL sends a visitor without a display name to onboarding, with
// the program URL embedded so onboarding can bounce them back.
func onboardingURL(target string) string {
	return "/coaches/onboarding?redirect=" + url.QueryEscape(target)
}

// errorURL is the coach-scoped registration error page. When the coach row
// itself could not be read there is no slug to scope by, so the unscoped
// page is used.
func errorURL(slug, coachID string) string {
	if slug == "" {
		return "/register-error?coachId=" + url.QueryEscape(coachID)
	}
	return "/" + slug + "/register-error?coachId=" + url.QueryEscape(coachID)
}
