package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/nbctl/cmd/nbctl/handlers"
	"github.com/imamik/nbctl/internal/inventory"
)

const noDryRunUsage = "Save the changes instead of only showing them"

// SyncInterfaceNaming returns the sync-interface-naming command.
func SyncInterfaceNaming() *cobra.Command {
	var (
		host  string
		apply bool
	)
	cmd := &cobra.Command{
		Use:   "sync-interface-naming",
		Short: "Name device interfaces after the prefix of their VLAN",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.SyncInterfaceNaming(cmd.Context(), global, host, apply)
		},
	}
	cmd.Flags().StringVarP(&host, "host", "H", "", "Device name (required)")
	cmd.Flags().BoolVarP(&apply, "no-dry-run", "N", false, noDryRunUsage)
	_ = cmd.MarkFlagRequired("host")
	return cmd
}

// SyncPrimaryIPDNS returns the sync-primary-ip-dns command.
func SyncPrimaryIPDNS() *cobra.Command {
	var apply bool
	cmd := &cobra.Command{
		Use:   "sync-primary-ip-dns",
		Short: "Set the DNS name of each VM's primary IP to the VM name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.SyncPrimaryIPDNS(cmd.Context(), global, apply)
		},
	}
	cmd.Flags().BoolVarP(&apply, "no-dry-run", "N", false, noDryRunUsage)
	return cmd
}

// SyncSubnetNaming returns the sync-subnet-naming command.
func SyncSubnetNaming() *cobra.Command {
	var (
		filter inventory.SubnetFilter
		apply  bool
	)
	cmd := &cobra.Command{
		Use:   "sync-subnet-naming",
		Short: "Describe each prefix with the name of its VLAN",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.SyncSubnetNaming(cmd.Context(), global, filter, apply)
		},
	}
	cmd.Flags().StringVarP(&filter.Site, "site", "s", "", "Only VLANs of this site slug")
	cmd.Flags().StringVarP(&filter.Tenant, "tenant", "t", "", "Only VLANs of this tenant slug")
	cmd.Flags().BoolVarP(&apply, "no-dry-run", "N", false, noDryRunUsage)
	return cmd
}
