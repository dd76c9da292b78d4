package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/nbctl/cmd/nbctl/handlers"
	"github.com/imamik/nbctl/internal/provisioning/vm"
)

// CreateVM returns the create-vm command.
func CreateVM() *cobra.Command {
	var (
		spec vm.Spec
		run  handlers.CreateVMOptions
		slot int
	)

	cmd := &cobra.Command{
		Use:   "create-vm",
		Short: "Create a virtual machine with its address, interface and ssh service",
		Long: `Create a virtual machine in NetBox as one transaction.

The command validates the request, allocates a MAC address, a uuid and,
for multipath and drbd storage, a storage slot. It then creates in order:
  - the primary IP (next free address of the VLAN prefix, or --ip)
  - the VM (status planned, storage custom fields)
  - interface eth0 on the VLAN
  - the address assignment and the primary IP of the VM
  - the ssh service tcp/22 named after --fqdn

When any step fails, every record already created is deleted again in
reverse order. On a terminal the operator can still roll back a committed
VM; --batch skips that question.

Example:
  nbctl create-vm -n vm-web-1 -f web-1.example.net -r 4096 -d 40 -v 100 \
    -y drbd -D node-a -D node-b`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("storage-id") {
				spec.SlotID = &slot
			}
			return handlers.CreateVM(cmd.Context(), global, spec, run)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&spec.Tenant, "tenant", "t", "", "Tenant name (defaults to NETBOX_DEFAULT_TENANT env)")
	f.StringVarP(&spec.Site, "site", "s", "", "Site name (defaults to NETBOX_DEFAULT_SITE env)")
	f.StringVarP(&spec.Cluster, "cluster", "c", "", "Cluster name (defaults to NETBOX_DEFAULT_CLUSTER env)")
	f.StringVarP(&spec.Name, "name", "n", "", "VM name, eg. \"vm-netbox-2\" (required)")
	f.StringVarP(&spec.FQDN, "fqdn", "f", "", "FQDN associated with the primary IP")
	f.IntVarP(&spec.MemoryMB, "ram-size", "r", 0, "RAM in MBs (required)")
	f.IntVarP(&spec.CPUs, "cpus", "C", 2, "Number of CPU cores")
	f.IntVarP(&spec.DiskGB, "disk-size", "d", 0, "Disk size in GBs (required)")
	f.IntVarP(&spec.VLANID, "vlan-id", "v", 0, "VLAN of the primary IP address")
	f.StringVar(&spec.Prefix, "prefix", "", "Prefix of the primary IP address, instead of --vlan-id")
	f.StringVarP(&spec.Platform, "platform", "p", "", "Platform slug")
	f.StringVarP(&spec.StorageType, "storage-type", "y", "", "Storage type: lvm, multipath or drbd (required)")
	f.StringSliceVarP(&spec.StorageDevices, "storage-device", "D", nil, "Storage device name, twice for drbd")
	f.StringVarP(&spec.StoragePool, "storage-pool", "P", "", "Storage pool (defaults to the first pool of the type)")
	f.IntVarP(&slot, "storage-id", "i", 0, "SAN LUN or DRBD resource ID (allocated when omitted)")
	f.StringVarP(&spec.Identifier, "uuid", "u", "", "VM uuid (generated when omitted)")
	f.BoolVar(&spec.ShortIdentifier, "short-uuid", false, "Keep only the first group of the uuid")
	f.StringVarP(&spec.MAC, "mac", "m", "", "MAC address of eth0 (generated when omitted)")
	f.StringVar(&spec.Address, "ip", "", "Primary IP address inside the prefix (next free when omitted)")
	f.IntVar(&spec.RoleID, "role-id", 0, "Device role ID (defaults to NETBOX_DEFAULT_ROLE_ID env)")
	f.BoolVarP(&run.Batch, "batch", "b", false, "Never prompt, keep the VM once committed")
	f.BoolVar(&run.DryRun, "dry-run", false, "Validate and allocate only, write nothing")

	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("ram-size")
	_ = cmd.MarkFlagRequired("disk-size")
	_ = cmd.MarkFlagRequired("storage-type")
	cmd.MarkFlagsMutuallyExclusive("vlan-id", "prefix")

	return cmd
}
