// Package allocate generates unique values for new inventory objects.
//
// Every generator is paired with a conflict check against the inventory and
// retried a bounded number of times. When every candidate conflicts the
// caller gets a *provisioning.AllocationExhaustedError.
package allocate
