// Package handlers contains HTTP handler interfaces, health checks, and
// reusable middleware for the tuition fee hub REST API.
//
// # Health Checks
//
// The HealthChecker interface allows registering multiple named health checks
// that are executed in parallel:
//
//	checker := handlers.NewCompositeHealthChecker("v1.0.0")
//	checker.AddCheck("database", handlers.NewDatabaseCheck(db))
//	checker.AddCheck("cache", handlers.NewCacheCheck(cache))
//
//	status := checker.Check(ctx)
//	if !status.Healthy {
//	    log.Printf("Health check failed: %s", status.Message)
//	}
//
// # Authentication
//
// Write endpoints are protected by API keys. Configuration carries bcrypt
// hashes, never plaintext keys:
//
//	auth := handlers.NewAPIKeyAuth("X-API-Key", cfg.APIKeyHashes)
//	protected := auth.Middleware(myHandler)
//
// Use HashKey to provision a new key hash for the configuration.
//
// # Middleware
//
// The package provides several reusable middleware components:
//
//	// Request timeout
//	withTimeout := handlers.TimeoutMiddleware(30 * time.Second)(myHandler)
//
//	// Security headers
//	secure := handlers.SecurityHeadersMiddleware(myHandler)
//
//	// Chain multiple middleware
//	handler := handlers.ChainHandler(
//	    myHandler,
//	    handlers.SecurityHeadersMiddleware,
//	    handlers.NoCacheMiddleware,
//	    auth.Middleware,
//	)
package handlers
