package models

import "strings"

const (
	PlatformPinterest = "pinterest"
	PlatformLinkedIn  = "linkedin"
	PlatformInstagram = "instagram"
	PlatformFacebook  = "facebook"
)

// Platforms is the closed set of networks that own a dedicated sheet.
var Platforms = []string{PlatformPinterest, PlatformLinkedIn, PlatformInstagram, PlatformFacebook}

// PlatformLabel capitalizes the first letter of the platform name
// ("linkedin" -> "Linkedin"). Unknown platforms are labelled the same way.
func PlatformLabel(platform string) string {
	p := strings.ToLower(strings.TrimSpace(platform))
	if p == "" {
		return ""
	}
	return strings.ToUpper(p[:1]) + p[1:]
}

func IsKnownPlatform(platform string) bool {
	p := strings.ToLower(strings.TrimSpace(platform))
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}
