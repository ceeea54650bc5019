// Package tracing gives each HTTP request a trace id and logs it as a span.
//
// Trace and span ids are prefixed ULIDs (trc_*, spn_*). An incoming
// X-Trace-ID header continues an existing trace; both ids are echoed back
// on the response so a client such as phonectl can correlate its calls
// with server logs.
//
//	tracer := tracing.New("phoneos", logger)
//	router.Use(tracing.HTTPMiddleware(tracer))
//
// Handlers can tag the request span:
//
//	if span := tracing.SpanFrom(c); span != nil {
//		span.SetTag("action", string(action.Kind()))
//	}
package tracing
