package middleware

import (
	"net/http"

	"github.com/unrolled/secure"
	"github.com/unrolled/secure/cspbuilder"
)

// Security sets CSP and the usual hardening headers. Embeds are limited to the
// hosts the rich text sanitizer lets through.
func Security(dev bool) func(http.Handler) http.Handler {
	csp := cspbuilder.Builder{
		Directives: map[string][]string{
			cspbuilder.DefaultSrc: {"'self'"},
			cspbuilder.StyleSrc:   {"'self'", "'unsafe-inline'", "https://fonts.googleapis.com"},
			cspbuilder.ScriptSrc:  {"'self'", "https://unpkg.com", "https://www.googletagmanager.com", "https://www.google-analytics.com"},
			cspbuilder.FontSrc:    {"'self'", "data:", "https://fonts.gstatic.com"},
			cspbuilder.ImgSrc:     {"'self'", "data:", "https:", "http:"},
			cspbuilder.MediaSrc:   {"'self'", "https:", "http:"},
			cspbuilder.FrameSrc:   {"https://www.youtube.com", "https://www.youtube-nocookie.com", "https://player.vimeo.com", "https://www.google.com", "https://maps.google.com"},
			cspbuilder.ConnectSrc: {"'self'", "https://www.google-analytics.com"},
			cspbuilder.BaseURI:    {"'self'"},
			cspbuilder.ObjectSrc:  {"'none'"},
		},
	}
	s := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: csp.MustBuild(),
		IsDevelopment:         dev,
	})
	return s.Handler
}
