package domain

import "testing"

func TestClassifySupportedURLs(t *testing.T) {
	cases := []struct {
		name        string
		url         string
		platform    Platform
		contentType ContentType
		contentID   string
		username    string
		valid       bool
	}{
		{"youtube watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", PlatformYouTube, ContentTypeVideo, "dQw4w9WgXcQ", "", true},
		{"youtube mobile", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", PlatformYouTube, ContentTypeVideo, "dQw4w9WgXcQ", "", true},
		{"youtu.be short link", "https://youtu.be/dQw4w9WgXcQ", PlatformYouTube, ContentTypeVideo, "dQw4w9WgXcQ", "", true},
		{"youtube shorts", "https://www.youtube.com/shorts/abc123xyz", PlatformYouTube, ContentTypeShort, "abc123xyz", "", true},
		{"youtube short video id", "https://www.youtube.com/watch?v=short", PlatformYouTube, ContentTypeVideo, "short", "", false},
		{"youtube channel page", "https://www.youtube.com/@somecreator", PlatformYouTube, ContentTypeUnknown, "", "", false},
		{"instagram reel", "https://www.instagram.com/reel/Cxyz123/", PlatformInstagram, ContentTypeReel, "Cxyz123", "", true},
		{"instagram reels plural", "https://www.instagram.com/reels/Cxyz123/", PlatformInstagram, ContentTypeReel, "Cxyz123", "", true},
		{"instagram post", "https://www.instagram.com/p/Cabc456/", PlatformInstagram, ContentTypePost, "Cabc456", "", true},
		{"instagram profile", "https://www.instagram.com/somecreator/", PlatformInstagram, ContentTypeUnknown, "", "", false},
		{"tiktok video", "https://www.tiktok.com/@creator/video/7123456789012345678", PlatformTikTok, ContentTypeVideo, "7123456789012345678", "creator", true},
		{"tiktok non-numeric id", "https://www.tiktok.com/@creator/video/abc", PlatformTikTok, ContentTypeUnknown, "", "creator", false},
		{"tiktok profile", "https://www.tiktok.com/@creator", PlatformTikTok, ContentTypeUnknown, "", "creator", false},
		{"twitter status", "https://twitter.com/someuser/status/1234567890", PlatformTwitter, ContentTypePost, "1234567890", "someuser", true},
		{"x.com status", "https://x.com/someuser/status/1234567890", PlatformTwitter, ContentTypePost, "1234567890", "someuser", true},
		{"twitter profile", "https://twitter.com/someuser", PlatformTwitter, ContentTypeUnknown, "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Classify(tc.url)
			if d.Platform != tc.platform {
				t.Errorf("platform = %s, want %s", d.Platform, tc.platform)
			}
			if d.ContentType != tc.contentType {
				t.Errorf("content type = %s, want %s", d.ContentType, tc.contentType)
			}
			if d.ContentID != tc.contentID {
				t.Errorf("content id = %q, want %q", d.ContentID, tc.contentID)
			}
			if d.Username != tc.username {
				t.Errorf("username = %q, want %q", d.Username, tc.username)
			}
			if d.IsValid != tc.valid {
				t.Errorf("valid = %v, want %v", d.IsValid, tc.valid)
			}
		})
	}
}

func TestClassifyUnsupportedURLs(t *testing.T) {
	cases := []string{
		"",
		"not a url",
		"https://example.com/watch?v=dQw4w9WgXcQ",
		"https://vimeo.com/12345",
		"ftp://youtube.com/watch?v=dQw4w9WgXcQ",
	}
	for _, raw := range cases {
		d := Classify(raw)
		if raw == "ftp://youtube.com/watch?v=dQw4w9WgXcQ" {
			// scheme is irrelevant once the host matches
			if d.Platform != PlatformYouTube {
				t.Errorf("Classify(%q).Platform = %s, want youtube", raw, d.Platform)
			}
			continue
		}
		if d.Platform != PlatformUnknown {
			t.Errorf("Classify(%q).Platform = %s, want unknown", raw, d.Platform)
		}
		if d.IsValid {
			t.Errorf("Classify(%q) unexpectedly valid", raw)
		}
	}
}

func TestClassifyValidImpliesContentID(t *testing.T) {
	urls := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://www.instagram.com/reel/Cxyz123/",
		"https://www.tiktok.com/@creator/video/71234",
		"https://x.com/u/status/99",
	}
	for _, raw := range urls {
		d := Classify(raw)
		if d.IsValid && d.ContentID == "" {
			t.Errorf("Classify(%q) valid without content id", raw)
		}
	}
}
