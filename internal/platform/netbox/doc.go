// Package netbox provides a typed client for the NetBox REST API built on
// github.com/netbox-community/go-netbox/v4.
//
// # Architecture
//
// The package is organized by NetBox application:
//
//   - client.go: Inventory interface and request/filter types
//   - types.go: typed records decoded from API responses
//   - real_client.go: transport, authentication, pagination and deletes
//   - virtualization.go: virtual machines, clusters and VM interfaces
//   - dcim.go: devices, sites, platforms, device interfaces, cables and VDCs
//   - ipam.go: prefixes, address allocation, IP addresses, VLANs and services
//   - tenancy.go: tenants
//   - errors.go: API error decoding and classification
//   - mock_client.go: function-field mock for unit tests
//
// # Transport
//
// Requests go through github.com/hashicorp/go-retryablehttp. GET, PATCH and
// DELETE are retried on connection errors, 429 and 5xx responses. POST is sent
// exactly once because a retried create can leave a duplicate record behind.
// Every call is bounded by the per-request timeout from [config.Timeouts].
//
// # Generated client
//
// Request bodies of this package are converted into the go-netbox request
// models and sent through the generated services. Responses are decoded from
// the returned body into the records in types.go. Two endpoints bypass the generated
// client: virtual machine lists filtered by custom fields (cf_uuid,
// cf_uuid__isw, cf_storage_id) and POST ipam/prefixes/{id}/available-ips/,
// whose generated model insists on an address.
//
// A requested interface MAC is written as a dcim/mac-addresses object that
// is then set as the interface's primary_mac_address.
//
// # Lookups
//
// Get* methods resolve a single record by a natural key and return (nil, nil)
// when nothing matches. More than one match is reported as an error.
package netbox
