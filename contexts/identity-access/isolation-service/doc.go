// Package isolation implements the tenant isolation enforcer and the
// shared role/permission model inside Loom.
//
// Layering:
// - domain: core entities, invariants, errors
// - application: use-case service using explicit ports
// - ports: stable boundaries for directory/grant/policy persistence
// - adapters: concrete HTTP, memory, and postgres implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Keep this module self-contained under identity-access context.
// - Do not import other context adapters into domain/application.
// - Cross-tenant access decisions fail closed on persistence errors.
package isolation
