package scraper

import (
	"strings"

	"price-tracker/internal/models"
)

// platformDomains is checked in order; the first contained domain decides the platform
var platformDomains = []struct {
	domain   string
	platform models.Platform
}{
	{"store.steampowered.com", models.PlatformSteam},
	{"steamcommunity.com", models.PlatformSteam},
	{"rozetka.com.ua", models.PlatformRozetka},
	{"comfy.ua", models.PlatformComfy},
}

// DetectPlatform classifies a URL by substring match against the supported domains.
// It does not check that the URL is well formed.
func DetectPlatform(rawURL string) (models.Platform, bool) {
	for _, d := range platformDomains {
		if strings.Contains(rawURL, d.domain) {
			return d.platform, true
		}
	}
	return "", false
}
