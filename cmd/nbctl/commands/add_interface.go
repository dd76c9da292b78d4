package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/nbctl/cmd/nbctl/handlers"
	"github.com/imamik/nbctl/internal/provisioning/nic"
)

// AddInterface returns the add-interface command.
func AddInterface() *cobra.Command {
	var req nic.Request

	cmd := &cobra.Command{
		Use:   "add-interface FQDN IFACE",
		Short: "Add an interface to an existing VM or device",
		Long: `Add an interface to an existing VM or device.

With --vlan the interface is untagged in that VLAN. With --offset it also
gets the n-th host address of the VLAN prefix. A MAC address is generated
unless given; bridges (names starting with "br") get none.

The interface and its address are created as one transaction. If the
address cannot be created the interface is removed again.

Example:
  nbctl add-interface web-1.example.net eth1 --vlan 200 --offset 12`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Target, req.Interface = args[0], args[1]
			return handlers.AddInterface(cmd.Context(), global, req)
		},
	}

	cmd.Flags().IntVar(&req.VLAN, "vlan", 0, "VID of the untagged VLAN")
	cmd.Flags().IntVar(&req.HostOffset, "offset", 0, "Assign the n-th host address of the VLAN prefix")
	cmd.Flags().StringVar(&req.MAC, "mac", "", "MAC address (generated when omitted)")

	return cmd
}
