// Package middleware provides the HTTP middleware shared by all routes:
// CORS for the browser presentation layer and per-IP rate limiting.
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
