// Package provisioning provides the transaction machinery shared by all
// multi-step inventory changes.
//
// # Subpackages
//
//   - allocate/: bounded-retry generation of unique values (MAC, UUID, slot)
//   - vm/: the VM provisioning transaction
//   - nic/: the add-interface transaction
//
// # Core Types
//
// Context carries configuration, the inventory client, the observer and metrics.
// Transaction owns a RollbackLog and moves through validating, allocating,
// committing and then either committed or rolling_back and failed. Every
// object created while committing is recorded and deleted again, newest
// first, when a later step fails.
//
// Errors are typed: ValidationFailedError, AllocationExhaustedError,
// RemoteOperationError, ConsistencyViolationError and RolledBackError. The
// state machine picks its transition from the error kind.
package provisioning
