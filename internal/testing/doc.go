// Package testing provides test doubles and fixtures shared by package tests.
//
// This package centralizes common testing patterns to avoid duplication across test files:
//   - FakeInventory: in-memory netbox.Inventory with failure injection and call recording
//   - Standard: a seeded store with tenant, site, cluster, VLAN 100 and storage devices
//   - MockJournalSink, MockConfirmer: testify mocks for transaction collaborators
//
// Usage:
//
//	fx := testing.NewStandard()
//	fx.Inventory.Fail("CreateVMInterface", errors.New("refused"))
package testing
