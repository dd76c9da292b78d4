package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/nbctl/cmd/nbctl/handlers"
	"github.com/imamik/nbctl/internal/inventory"
)

// AddCable returns the add-cable command.
func AddCable() *cobra.Command {
	var (
		req    inventory.CableRequest
		length float64
	)

	cmd := &cobra.Command{
		Use:   "add-cable",
		Short: "Connect two interfaces with a cable",
		Long: `Connect two interfaces of VMs or devices with a cable.

Length units only apply when --length is given.

Example:
  nbctl add-cable -a node-a -0 ens1 -b sw-1 -1 Ethernet12 -y cat6 -L 3 -U m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("length") {
				req.Length = &length
			}
			return handlers.AddCable(cmd.Context(), global, req)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&req.HostA, "host-a", "a", "", "Device or VM name of side A (required)")
	f.StringVarP(&req.PortA, "port-a", "0", "", "Interface name of side A (required)")
	f.StringVarP(&req.HostB, "host-b", "b", "", "Device or VM name of side B (required)")
	f.StringVarP(&req.PortB, "port-b", "1", "", "Interface name of side B (required)")
	f.StringVarP(&req.Type, "type", "y", "", "Cable type")
	f.StringVarP(&req.Description, "description", "d", "", "Cable description")
	f.StringVarP(&req.Label, "label", "l", "", "Cable label")
	f.StringVarP(&req.Color, "color", "c", "", "Cable color")
	f.Float64VarP(&length, "length", "L", 0, "Cable length")
	f.StringVarP(&req.Unit, "units", "U", inventory.DefaultLengthUnit, "Cable length units")
	for _, name := range []string{"host-a", "port-a", "host-b", "port-b"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

// AddService returns the add-service command.
func AddService() *cobra.Command {
	return &cobra.Command{
		Use:   "add-service HOST NAME PROTO/PORT",
		Short: "Record a service on a VM or device",
		Long: `Record a service on a VM or device.

The same name, protocol and port may only exist once, and all services
sharing a name must live on the same VM or device.

Example:
  nbctl add-service vm-web-1 www.example.net tcp/443`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.AddService(cmd.Context(), global, args[0], args[1], args[2])
		},
	}
}

// FindDevice returns the find-device command.
func FindDevice() *cobra.Command {
	var uuid bool

	cmd := &cobra.Command{
		Use:   "find-device FQDN",
		Short: "Print the VM or device behind an FQDN",
		Long: `Print the name of the VM or device behind an FQDN.

The ssh service named FQDN is looked up first, then IP addresses with that
DNS name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.FindDevice(cmd.Context(), global, args[0], uuid)
		},
	}
	cmd.Flags().BoolVarP(&uuid, "uuid", "u", false, "Print the uuid custom field instead of the name")
	return cmd
}

// ListVMs returns the list-vms command.
func ListVMs() *cobra.Command {
	var opts inventory.ListOptions

	cmd := &cobra.Command{
		Use:   "list-vms",
		Short: "List virtual machines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.ListVMs(cmd.Context(), global, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Cluster, "cluster", "c", "", "Filter by cluster name")
	cmd.Flags().StringVarP(&opts.Status, "status", "s", inventory.DefaultVMStatus, "Filter by status")
	cmd.Flags().BoolVarP(&opts.UUID, "uuid", "u", false, "Print \"vm-UUID\" instead of the name")
	return cmd
}

// MarkUpgraded returns the mark-upgraded command.
func MarkUpgraded() *cobra.Command {
	var opts inventory.UpgradeOptions

	cmd := &cobra.Command{
		Use:   "mark-upgraded HOST",
		Short: "Stamp today's date into the upgrade fields of a VM or device",
		Long: `Stamp today's date into the upgrade custom fields of a VM or device.

Without any of -o, -f and -a the OS field last_upgrade is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.MarkUpgraded(cmd.Context(), global, args[0], opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.OS, "upgrade-os", "o", false, "Update the last_upgrade field")
	cmd.Flags().BoolVarP(&opts.Firmware, "upgrade-fw", "f", false, "Update the last_upgrade_fw field")
	cmd.Flags().BoolVarP(&opts.App, "upgrade-app", "a", false, "Update the last_upgrade_app field")
	cmd.Flags().BoolVarP(&opts.DryRun, "no-change", "n", false, "Show a preview and modify nothing")
	return cmd
}

// UpdateVMStorage returns the update-vm-storage command.
func UpdateVMStorage() *cobra.Command {
	var (
		req  inventory.StorageUpdate
		slot int
	)

	cmd := &cobra.Command{
		Use:   "update-vm-storage",
		Short: "Rewrite the storage custom fields of a VM",
		Long: `Rewrite the storage custom fields of an existing VM.

Use --device None to clear the storage device. --allocate-slot picks the
lowest free storage ID in the VM's cluster.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("id") {
				req.SlotID = &slot
			}
			return handlers.UpdateVMStorage(cmd.Context(), global, req)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&req.VM, "vm", "v", "", "VM name (required)")
	f.StringVarP(&req.Type, "type", "y", "", "Storage type: lvm, multipath or drbd (required)")
	f.StringVarP(&req.Pool, "pool", "p", "", "Storage pool")
	f.StringVarP(&req.Device, "device", "d", "", "Storage device name or \"None\"")
	f.IntVarP(&slot, "id", "i", 0, "SAN LUN or DRBD resource ID")
	f.BoolVar(&req.AllocateSlot, "allocate-slot", false, "Allocate the lowest free storage ID")
	_ = cmd.MarkFlagRequired("vm")
	_ = cmd.MarkFlagRequired("type")
	cmd.MarkFlagsMutuallyExclusive("id", "allocate-slot")

	return cmd
}

// SetInterfaceVLANs returns the set-interface-vlans command.
func SetInterfaceVLANs() *cobra.Command {
	var site string

	cmd := &cobra.Command{
		Use:   "set-interface-vlans DEVICE IFACE VLANS",
		Short: "Tag a device interface with a list of site VLANs",
		Long: `Put a device interface in tagged mode carrying exactly the listed VLANs.

VLANS uses the Cisco notation "1,2,5-10"; ranges include both ends. VIDs
the site has no VLAN for are reported and skipped.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.SetInterfaceVLANs(cmd.Context(), global, site, args[0], args[1], args[2])
		},
	}
	cmd.Flags().StringVarP(&site, "site", "s", "", "Site slug (defaults to NETBOX_DEFAULT_SITE env)")
	return cmd
}

// SetInterfaceVDC returns the set-interface-vdc command.
func SetInterfaceVDC() *cobra.Command {
	var host, iface, vdc string

	cmd := &cobra.Command{
		Use:   "set-interface-vdc",
		Short: "Add a virtual device context to device interfaces",
		Long: `Add a virtual device context to the named interfaces of a device.

Without --vdc all contexts are removed from the interfaces.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.SetInterfaceVDC(cmd.Context(), global, host, iface, vdc)
		},
	}
	cmd.Flags().StringVarP(&host, "host", "H", "", "Device name (required)")
	cmd.Flags().StringVarP(&iface, "iface", "i", "", "Interface name (required)")
	cmd.Flags().StringVarP(&vdc, "vdc", "V", "", "VDC name, eg. \"root\"")
	_ = cmd.MarkFlagRequired("host")
	_ = cmd.MarkFlagRequired("iface")
	return cmd
}
