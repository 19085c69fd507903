package file

import "testing"

func TestCategoryForMIME(t *testing.T) {
	cases := []struct {
		mime string
		want Category
	}{
		{"image/png", CategoryImage},
		{"image/jpeg", CategoryImage},
		{"application/pdf", CategoryDocument},
		{"text/plain", CategoryDocument},
		{"text/csv", CategoryDocument},
		{"audio/mpeg", CategoryAudio},
		{"video/mp4", CategoryVideo},
		{"application/zip", CategoryOther},
		{"application/x-executable", CategoryOther},
		{"TEXT/PLAIN; charset=utf-8", CategoryDocument},
		{"image/x-unknown-raw", CategoryImage},
		{"", CategoryOther},
	}

	for _, tc := range cases {
		if got := CategoryForMIME(tc.mime); got != tc.want {
			t.Errorf("CategoryForMIME(%q) = %s, want %s", tc.mime, got, tc.want)
		}
	}
}

func TestMIMEAllowed(t *testing.T) {
	allowed := []string{
		"image/png",
		"application/pdf",
		"text/csv",
		"audio/mpeg",
		"video/mp4",
		"text/plain; charset=utf-8",
	}
	for _, mime := range allowed {
		if !MIMEAllowed(mime) {
			t.Errorf("expected %q to be allowed", mime)
		}
	}

	rejected := []string{
		"application/x-executable",
		"application/x-sh",
		"text/html; charset=utf-8",
		"",
	}
	for _, mime := range rejected {
		if MIMEAllowed(mime) {
			t.Errorf("expected %q to be rejected", mime)
		}
	}
}
