// Package useragent classifies user-agent strings into coarse device info.
// Classification is best-effort and ordered: the first matching pattern wins,
// so more specific tokens must precede the generic ones (Edge before Chrome,
// Chrome before Safari, Android before Linux).
package useragent

import "strings"

// DeviceInfo is a best-effort classification of a user-agent string.
type DeviceInfo struct {
	Browser     string `json:"browser"`
	OS          string `json:"os"`
	DeviceClass string `json:"device_class"` // desktop, mobile, tablet, bot, unknown
	IsMobile    bool   `json:"is_mobile"`
}

type pattern struct {
	token string
	name  string
}

var browserPatterns = []pattern{
	{"edg/", "Edge"},
	{"edge/", "Edge"},
	{"opr/", "Opera"},
	{"opera", "Opera"},
	{"firefox/", "Firefox"},
	{"fxios/", "Firefox"},
	{"samsungbrowser/", "Samsung Internet"},
	{"chrome/", "Chrome"},
	{"crios/", "Chrome"},
	{"safari/", "Safari"},
	{"msie", "Internet Explorer"},
	{"trident/", "Internet Explorer"},
}

var osPatterns = []pattern{
	{"windows nt", "Windows"},
	{"windows phone", "Windows Phone"},
	{"android", "Android"},
	{"iphone", "iOS"},
	{"ipad", "iOS"},
	{"ipod", "iOS"},
	{"mac os x", "macOS"},
	{"macintosh", "macOS"},
	{"cros", "ChromeOS"},
	{"linux", "Linux"},
}

var botTokens = []string{"bot", "crawler", "spider", "curl/", "wget/", "python-requests"}

var tabletTokens = []string{"ipad", "tablet", "kindle", "silk/"}

var mobileTokens = []string{"mobile", "iphone", "ipod", "android", "windows phone", "opera mini"}

// Parse classifies a raw user-agent string. It never fails; unrecognized
// agents come back as unknown/unknown/desktop.
func Parse(raw string) DeviceInfo {
	ua := strings.ToLower(strings.TrimSpace(raw))
	info := DeviceInfo{
		Browser:     "unknown",
		OS:          "unknown",
		DeviceClass: "desktop",
	}
	if ua == "" {
		info.DeviceClass = "unknown"
		return info
	}

	for _, p := range browserPatterns {
		if strings.Contains(ua, p.token) {
			info.Browser = p.name
			break
		}
	}

	for _, p := range osPatterns {
		if strings.Contains(ua, p.token) {
			info.OS = p.name
			break
		}
	}

	switch {
	case containsAny(ua, botTokens):
		info.DeviceClass = "bot"
	case containsAny(ua, tabletTokens):
		info.DeviceClass = "tablet"
	case containsAny(ua, mobileTokens):
		info.DeviceClass = "mobile"
		info.IsMobile = true
	}

	return info
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
