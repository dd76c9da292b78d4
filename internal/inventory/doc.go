// Package inventory implements the single-shot inventory tasks: cabling,
// service records, lookups, upgrade stamps, storage fields, VLAN and VDC
// assignment and the naming syncs.
//
// Tasks that change several records return the list of changes. Sync
// tasks only report changes unless asked to apply them.
package inventory
