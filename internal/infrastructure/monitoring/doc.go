/*
Package monitoring provides Prometheus metrics for the emulator.

Each Metrics value owns a private registry. The store reports every
dispatch, a store listener mirrors device state into gauges, and the
snapshot writer reports loads, saves and its breaker state.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "save")
	// ... write the snapshot ...
	timer.Stop("ok")
*/
package monitoring
