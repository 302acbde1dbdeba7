package scraper

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf16"
)

var steamAppID = regexp.MustCompile(`app/(\d+)`)

// GenerateProductID derives a stable identifier from a product URL.
//
// Steam store pages map to "steam_<appid>". Any other absolute URL maps to
// "<host without www>_<last path segment>". Input that is not an absolute URL falls back to
// "product_<hash>" computed over the exact string.
func GenerateProductID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Sprintf("product_%d", absHash(rawURL))
	}

	if strings.Contains(rawURL, "store.steampowered.com") {
		if m := steamAppID.FindStringSubmatch(rawURL); len(m) > 1 {
			return "steam_" + m[1]
		}
	}

	host := strings.Replace(u.Hostname(), "www.", "", 1)
	return host + "_" + lastPathSegment(u.Path)
}

// NativeID returns the platform part of a product id: "steam_730" -> "730",
// "rozetka.com.ua_p123" -> "p123".
func NativeID(productID string) string {
	if i := strings.Index(productID, "_"); i >= 0 {
		return productID[i+1:]
	}
	return productID
}

func lastPathSegment(path string) string {
	path = strings.TrimSuffix(path, "/")
	parts := strings.Split(path, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return ""
}

// hashCode is the 31-multiplier rolling hash over UTF-16 code units, wrapping at int32
func hashCode(s string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(c)
	}
	return h
}

func absHash(s string) int64 {
	h := int64(hashCode(s))
	if h < 0 {
		return -h
	}
	return h
}
