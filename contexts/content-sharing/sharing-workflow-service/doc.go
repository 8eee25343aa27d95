// Package sharing hosts the cross-tenant content sharing workflow.
//
// A sharing request proposes copying one context item from a source
// organization into a target organization. Requests start pending and
// transition exactly once to approved or rejected. Approval copies the
// item into the target tenant so it owns an independent row rather than
// a live reference.
//
// Layering follows the repository convention: domain holds entities and
// sentinel errors, application holds use-cases behind ports, adapters
// provide memory/postgres/http implementations.
package sharing
