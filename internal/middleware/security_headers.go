package middleware

import (
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const recaptchaOrigins = "https://www.google.com https://www.gstatic.com"

// SecurityOptions shapes the Content-Security-Policy for the served site
type SecurityOptions struct {
	ImageBaseURL string // public URL of uploaded project images, may be empty
	Captcha      bool   // allow the reCAPTCHA script and frame
}

// ContentSecurityPolicy renders the policy for the SPA and the API
func ContentSecurityPolicy(opts SecurityOptions) string {
	imgSrc := []string{"'self'", "data:"}
	if origin := originOf(opts.ImageBaseURL); origin != "" {
		imgSrc = append(imgSrc, origin)
	}

	scriptSrc := "'self'"
	frameSrc := "'none'"
	if opts.Captcha {
		scriptSrc += " " + recaptchaOrigins
		frameSrc = recaptchaOrigins
	}

	directives := []string{
		"default-src 'self'",
		"script-src " + scriptSrc,
		"style-src 'self' 'unsafe-inline'",
		"img-src " + strings.Join(imgSrc, " "),
		"connect-src 'self'",
		"frame-src " + frameSrc,
		"frame-ancestors 'none'",
		"base-uri 'self'",
		"form-action 'self'",
	}
	return strings.Join(directives, "; ")
}

func originOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// SecurityHeadersMiddleware adds security headers to all HTTP responses
func SecurityHeadersMiddleware(opts SecurityOptions) gin.HandlerFunc {
	headers := map[string]string{
		"Content-Security-Policy":           ContentSecurityPolicy(opts),
		"X-Frame-Options":                   "DENY",
		"X-Content-Type-Options":            "nosniff",
		"Referrer-Policy":                   "strict-origin-when-cross-origin",
		"Permissions-Policy":                "camera=(), microphone=(), geolocation=(), interest-cohort=()",
		"X-Permitted-Cross-Domain-Policies": "none",
	}

	return func(c *gin.Context) {
		for name, value := range headers {
			c.Header(name, value)
		}
		c.Next()
	}
}

// NoStoreMiddleware disables caching. Mounted on /api only; the SPA's static
// assets stay cacheable.
func NoStoreMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store, no-cache, must-revalidate, private")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}
