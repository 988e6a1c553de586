package ecs

import "errors"

// Sentinel error kinds. Wrap with fmt.Errorf("%w: ...", ErrX, ...) at the
// call site and match with errors.Is.
var (
	// ErrEntityIDSpaceExhausted is returned by the entity allocator once the
	// 16-bit id range is full.
	ErrEntityIDSpaceExhausted = errors.New("sparsecs: entity id space exhausted")

	// ErrInvalidHandle is returned for operations against a stale or
	// already-destroyed entity handle.
	ErrInvalidHandle = errors.New("sparsecs: invalid entity handle")

	// ErrInvalidQuery is returned by Query.Begin when the query has no
	// `with` constraint to serve as an iteration base.
	ErrInvalidQuery = errors.New("sparsecs: query has no with() constraint")

	// ErrDuplicateRegistration is returned when a registry's component id
	// slot is already bound to a store of a different type than the one
	// being looked up — only reachable if the global descriptor table
	// itself became inconsistent, but surfaced as an error rather than a
	// panic since it is a property of untrusted runtime state, not a
	// provably-impossible branch.
	ErrDuplicateRegistration = errors.New("sparsecs: component id already bound to a different type")

	// ErrMissingComponentStore is returned during deserialization when a
	// serialized component id has no local counterpart and out-of-order
	// remapping is not enabled.
	ErrMissingComponentStore = errors.New("sparsecs: missing local component store for serialized id")

	// ErrPrecondition is returned for operations whose precondition the
	// reference implementation enforces only via assertion (adding a
	// component twice, removing an absent one, exceeding the query
	// argument cap).
	ErrPrecondition = errors.New("sparsecs: precondition violated")
)
