/*
Package resilience provides a circuit breaker for storage writes.

A snapshot backend that starts failing (disk full, database locked) would
otherwise be retried on every state change. The breaker opens after a run
of failures, rejects writes with ErrCircuitOpen for a timeout, then lets a
probe through:

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                       [failure]
	                                           v
	                                          Open

Usage:

	breaker := resilience.New("snapshot", resilience.Settings{
		OnStateChange: func(name string, from, to resilience.State) {
			log.Warn("breaker", zap.Stringer("from", from), zap.Stringer("to", to))
		},
	})
	err := breaker.Do(func() error { return kv.Set(ctx, key, data) })
*/
package resilience
