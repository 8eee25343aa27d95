// Package quota tracks per-organization usage counters against limits
// inside Loom.
//
// Three resource classes are metered: context items, global-access
// features, and sharing requests. Check and update are separate calls by
// design (check-before-work, update-after-success); callers that need a
// hard cap under concurrency use the atomic reserve operation instead.
//
// Layering:
// - domain: core entities, invariants, errors
// - application: use-case service using explicit ports
// - ports: stable boundary for quota persistence
// - adapters: concrete HTTP, memory, and postgres implementations
// - transport: module-private DTOs for HTTP contracts
package quota
