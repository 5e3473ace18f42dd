package middleware

import (
	"net/http"
	"strings"
)

// contentSecurityPolicy allows the portal's own assets plus the external
// origins the frontend talks to directly: Supabase, the Discord invite
// widget, and Google Drive previews.
var contentSecurityPolicy = strings.Join([]string{
	"default-src 'self'",
	"script-src 'self'",
	"style-src 'self' 'unsafe-inline'",
	"img-src 'self' data: https:",
	"connect-src 'self' https://*.supabase.co https://discord.com https://www.googleapis.com",
	"frame-src https://drive.google.com",
	"frame-ancestors 'none'",
}, "; ")

// SecureHeaders sets the security response headers on every response,
// including errors, redirects, and rate-limit rejections. It runs outermost
// so nothing can answer without them.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		h.Set("Content-Security-Policy", contentSecurityPolicy)
		next.ServeHTTP(w, r)
	})
}
