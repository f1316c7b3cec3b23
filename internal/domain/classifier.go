package domain

import (
	"net/url"
	"strings"
)

const youtubeVideoIDMinLen = 11

// Classify parses a submitted content URL into a platform descriptor.
// It never fails: malformed or unsupported URLs come back as
// platform=unknown with IsValid=false.
func Classify(rawURL string) PlatformDescriptor {
	unknown := PlatformDescriptor{Platform: PlatformUnknown, ContentType: ContentTypeUnknown}

	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return unknown
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")

	switch host {
	case "youtube.com", "youtu.be":
		return classifyYouTube(host, u)
	case "instagram.com":
		return classifyInstagram(u)
	case "tiktok.com":
		return classifyTikTok(u)
	case "twitter.com", "x.com":
		return classifyTwitter(u)
	default:
		return unknown
	}
}

func classifyYouTube(host string, u *url.URL) PlatformDescriptor {
	d := PlatformDescriptor{Platform: PlatformYouTube, ContentType: ContentTypeVideo}

	if host == "youtu.be" {
		d.ContentID = firstPathSegment(u.Path)
		d.IsValid = len(d.ContentID) >= youtubeVideoIDMinLen
		return d
	}

	segs := pathSegments(u.Path)
	switch {
	case u.Path == "/watch" || (len(segs) == 1 && segs[0] == "watch"):
		d.ContentID = u.Query().Get("v")
		d.IsValid = len(d.ContentID) >= youtubeVideoIDMinLen
	case len(segs) >= 2 && segs[0] == "shorts":
		d.ContentType = ContentTypeShort
		d.ContentID = segs[1]
		d.IsValid = d.ContentID != ""
	default:
		d.ContentType = ContentTypeUnknown
	}
	return d
}

func classifyInstagram(u *url.URL) PlatformDescriptor {
	d := PlatformDescriptor{Platform: PlatformInstagram, ContentType: ContentTypeUnknown}
	segs := pathSegments(u.Path)
	if len(segs) < 2 {
		return d
	}
	switch segs[0] {
	case "reel", "reels":
		d.ContentType = ContentTypeReel
	case "p":
		d.ContentType = ContentTypePost
	default:
		return d
	}
	d.ContentID = segs[1]
	d.IsValid = d.ContentID != ""
	return d
}

func classifyTikTok(u *url.URL) PlatformDescriptor {
	d := PlatformDescriptor{Platform: PlatformTikTok, ContentType: ContentTypeUnknown}
	segs := pathSegments(u.Path)
	for i, seg := range segs {
		if strings.HasPrefix(seg, "@") {
			d.Username = strings.TrimPrefix(seg, "@")
			continue
		}
		if seg == "video" && i+1 < len(segs) && isDigits(segs[i+1]) {
			d.ContentType = ContentTypeVideo
			d.ContentID = segs[i+1]
			d.IsValid = true
			break
		}
	}
	return d
}

func classifyTwitter(u *url.URL) PlatformDescriptor {
	d := PlatformDescriptor{Platform: PlatformTwitter, ContentType: ContentTypeUnknown}
	segs := pathSegments(u.Path)
	if len(segs) >= 3 && segs[1] == "status" && isDigits(segs[2]) {
		d.Username = segs[0]
		d.ContentType = ContentTypePost
		d.ContentID = segs[2]
		d.IsValid = true
	}
	return d
}

func pathSegments(path string) []string {
	out := make([]string, 0, 4)
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

func firstPathSegment(path string) string {
	segs := pathSegments(path)
	if len(segs) == 0 {
		return ""
	}
	return segs[0]
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
