// Package wnsmsync mirrors smart meter readings from the vendor's account API
// into a local statistics store.
//
// # Architecture
//
// The service is structured into several key packages:
//   - api: HTTP client for the smart meter account API
//   - session: one logical login per pipeline, re-established on expiry
//   - poller: the poll cycle over all metering points
//   - importer: once-a-day historical backfill driven by import cursors
//   - database: PostgreSQL and in-memory sinks, monotonic value guard
//   - scheduler: cron driven cycles that never overlap
//   - grpc: health service and interceptors
//   - metrics: Prometheus collectors
//   - models: Shared data structures
//
// Key Features
//
//   - Current Values:
//     Each cycle looks up the newest reading of yesterday, falling back to
//     the day before, since the vendor's data lags by up to two days. A
//     published value never decreases.
//
//   - Historical Data:
//     Quarter-hour or hourly samples are written as long-term statistics.
//     Writes are idempotent per (point, timestamp) and gaps stay absent.
//
//   - Failure Isolation:
//     Rejected credentials abort the whole cycle. Any other failure only
//     marks the affected point unavailable until the next cycle.
//
// Example Usage
//
//	sess := session.New(api.NewClient(baseURL, user, pass), logger)
//	imp := importer.New(sess, sink, cursors, logger)
//	p := poller.New(sess, imp, sink, logger, poller.Config{Points: points})
//	results, err := p.RunCycle(ctx)
//
// For more information about specific packages, see their respective
// documentation.
package wnsmsync
