package domain

import "strings"

// Platform classifies the client a request came from.
type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
	PlatformWeb     Platform = "web"
)

// iOS device markers, matched case-insensitively.
var iosMarkers = []string{"iphone", "ipad", "ipod"}

// DetectPlatform classifies a client identification string (user agent) into
// one of the three platform tags. An Android marker wins over iOS markers;
// anything unrecognized is web. Pure and total.
func DetectPlatform(clientIdentifier string) Platform {
	ua := strings.ToLower(clientIdentifier)

	if strings.Contains(ua, "android") {
		return PlatformAndroid
	}
	for _, marker := range iosMarkers {
		if strings.Contains(ua, marker) {
			return PlatformIOS
		}
	}
	return PlatformWeb
}
