package testing

import "github.com/imamik/nbctl/internal/platform/netbox"

// Role names that qualify a device as storage backend.
const (
	RoleStorage     = "Storage"
	RoleClusterNode = "Cluster Node"
)

// Standard is a store seeded with the reference data a VM request needs.
//
// VLAN 100 carries prefix 10.0.0.0/24 whose first two hosts are taken, so
// the next allocated address is 10.0.0.3/24.
type Standard struct {
	Inventory *FakeInventory

	Tenant   *netbox.Tenant
	Site     *netbox.Site
	Cluster  *netbox.Cluster
	Platform *netbox.Platform
	VLAN     *netbox.VLAN
	Prefix   *netbox.Prefix
	Gateway  *netbox.IPAddress

	SAN   *netbox.Device // role Storage
	NodeA *netbox.Device // role Cluster Node
	NodeB *netbox.Device // role Cluster Node
}

// NewStandard builds the standard fixture.
func NewStandard() *Standard {
	inv := NewFakeInventory()
	fx := &Standard{Inventory: inv}
	fx.Tenant = inv.AddTenant("acme")
	fx.Site = inv.AddSite("dc1")
	fx.Cluster = inv.AddCluster("c1", fx.Site)
	fx.Platform = inv.AddPlatform("ubuntu22")
	fx.VLAN = inv.AddVLAN(100, "servers", fx.Site, fx.Tenant)
	fx.Prefix = inv.AddPrefix("10.0.0.0/24", fx.VLAN, "Servers")
	fx.Gateway = inv.AddIP("10.0.0.1/24", "gw.example.net")
	inv.AddIP("10.0.0.2/24", "ns.example.net")
	fx.SAN = inv.AddDevice("san-1", RoleStorage, fx.Site)
	fx.NodeA = inv.AddDevice("node-a", RoleClusterNode, fx.Site)
	fx.NodeB = inv.AddDevice("node-b", RoleClusterNode, fx.Site)
	return fx
}

// FreeGateway removes the gateway address record so the next allocation
// returns the gateway itself.
func (fx *Standard) FreeGateway() {
	fx.Inventory.mu.Lock()
	defer fx.Inventory.mu.Unlock()
	delete(fx.Inventory.IPs, fx.Gateway.ID)
}
