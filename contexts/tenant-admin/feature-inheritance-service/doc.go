// Package featureinheritance resolves effective feature flags across the
// organization hierarchy inside Loom.
//
// An organization's own toggle always overrides the value inherited from
// its immediate parent. Inheritance reads one level up only; the chain
// walk is a separate, cycle-guarded operation.
//
// Layering:
// - domain: core entities, invariants, errors
// - application: use-case service using explicit ports
// - ports: stable boundaries for directory/toggle persistence and quota
// - adapters: concrete HTTP, memory, and postgres implementations
// - transport: module-private DTOs for HTTP contracts
package featureinheritance
