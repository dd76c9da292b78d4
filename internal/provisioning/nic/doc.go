// Package nic adds an interface, and optionally an address on it, to an
// existing VM or device. Both records are created in one transaction so a
// failed address create removes the interface again.
package nic
