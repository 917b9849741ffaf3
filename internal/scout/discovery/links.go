package discovery

import (
	"net/url"
	"strings"
)

var droppedSchemes = map[string]struct{}{
	"mailto": {}, "tel": {}, "javascript": {}, "data": {},
}

var droppedExtensions = []string{
	".css", ".js", ".ico", ".svg", ".png", ".jpg", ".jpeg", ".gif", ".webp", ".woff", ".woff2", ".ttf",
}

var droppedDomains = map[string]struct{}{
	"fonts.googleapis.com": {}, "fonts.gstatic.com": {},
	"google-analytics.com": {}, "googletagmanager.com": {},
	"doubleclick.net": {}, "facebook.net": {},
}

var trackingParamPrefixes = []string{"utm_"}

var trackingParamNames = map[string]struct{}{
	"ref": {}, "fbclid": {}, "gclid": {}, "mc_cid": {}, "mc_eid": {},
}

// socialDomains maps a recognized social-platform host to its canonical
// profile-URL form, used by CanonicalProfileURL and CanonicalizeLink's
// social-profile branch.
var socialDomains = map[string]string{
	"instagram.com": "instagram.com", "www.instagram.com": "instagram.com",
	"twitter.com": "x.com", "x.com": "x.com", "www.twitter.com": "x.com",
	"facebook.com": "facebook.com", "www.facebook.com": "facebook.com",
	"tiktok.com": "tiktok.com", "www.tiktok.com": "tiktok.com",
	"bsky.app": "bsky.app",
}

// CanonicalizeLink filters out static-asset/tracking/analytics URLs,
// strips tracking query params, and normalizes social-profile URLs to
// their canonical handle form, per section 4.8's link-promotion rules. ok
// is false when the link should be dropped entirely.
func CanonicalizeLink(raw string) (canonical string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "" {
		if _, dropped := droppedSchemes[scheme]; dropped {
			return "", false
		}
	}
	host := strings.ToLower(u.Hostname())
	for d := range droppedDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return "", false
		}
	}
	for _, ext := range droppedExtensions {
		if strings.HasSuffix(strings.ToLower(u.Path), ext) {
			return "", false
		}
	}

	if canonicalHost, isSocial := socialDomains[host]; isSocial {
		if profile, ok := extractProfileHandle(u.Path); ok {
			return CanonicalProfileURL(canonicalHost, profile), true
		}
	}

	u.Fragment = ""
	u.User = nil
	stripTrackingParams(u)
	u.Host = host
	u.Scheme = strings.ToLower(scheme)
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	return u.String(), true
}

// CanonicalProfileURL builds the canonical profile URL for a (platform,
// handle) pair, e.g. ("instagram.com", "blockassoc") ->
// "https://instagram.com/blockassoc".
func CanonicalProfileURL(platform, handle string) string {
	host := platform
	if canon, ok := socialDomains[strings.ToLower(platform)]; ok {
		host = canon
	}
	return "https://" + host + "/" + strings.TrimPrefix(strings.TrimSpace(handle), "@")
}

// extractProfileHandle pulls the first path segment of a social URL as
// its profile handle, rejecting known non-profile paths (explore,
// reel, p, status) that aren't account pages.
func extractProfileHandle(path string) (string, bool) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return "", false
	}
	switch strings.ToLower(segments[0]) {
	case "explore", "reel", "reels", "p", "status", "search", "hashtag", "i":
		return "", false
	}
	return segments[0], true
}

func stripTrackingParams(u *url.URL) {
	q := u.Query()
	for key := range q {
		lower := strings.ToLower(key)
		if _, named := trackingParamNames[lower]; named {
			q.Del(key)
			continue
		}
		for _, prefix := range trackingParamPrefixes {
			if strings.HasPrefix(lower, prefix) {
				q.Del(key)
				break
			}
		}
	}
	u.RawQuery = q.Encode()
}
