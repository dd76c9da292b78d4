// Package vm provisions virtual machine records.
//
// A create-vm run validates a ProvisionRequest against the inventory,
// allocates the MAC address, identifier and storage slot, then commits in
// strict order:
//
//  1. IP address record (next available, or the requested one)
//  2. VM record, status planned, with uuid and storage custom fields
//  3. eth0 interface with MAC and untagged VLAN
//  4. address assigned to the interface
//  5. address set as primary IPv4 of the VM
//  6. ssh service tcp/22 named after the FQDN, when one is given
//
// Every created record is logged and removed again, newest first, if a
// later step or consistency check fails.
package vm
