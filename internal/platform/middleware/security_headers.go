package middleware

import (
	"github.com/labstack/echo/v4"
)

// SecurityHeaders returns middleware that sets security response headers on
// every request. Chat replies and reminder payloads carry patient names and
// medication details, so responses are marked non-cacheable and all browser
// resource loading is denied.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			// Prevent MIME type sniffing
			h.Set("X-Content-Type-Options", "nosniff")

			// The API serves no embeddable content; deny framing outright.
			h.Set("X-Frame-Options", "DENY")

			// Strict CSP for a JSON API: deny all resource loading and
			// frame embedding.
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

			// HTTP Strict Transport Security, 1 year including subdomains.
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")

			// Do not leak dialogue URLs to downstream services.
			h.Set("Referrer-Policy", "no-referrer")

			// Disable browser features the chat client does not need.
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

			// Dialogue turns and reminder drains must never be replayed
			// from a cache.
			h.Set("Cache-Control", "no-store")

			return next(c)
		}
	}
}
