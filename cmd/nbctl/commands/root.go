// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/nbctl/cmd/nbctl/handlers"
)

// global holds the persistent flags of the current invocation.
var global handlers.Options

// Root returns the root command for the nbctl CLI.
//
// The root command carries the connection flags shared by every
// subcommand. Flags override the config file and the environment.
func Root() *cobra.Command {
	global = handlers.Options{}

	cmd := &cobra.Command{
		Use:           "nbctl",
		Short:         "Provision VMs and maintain a NetBox inventory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&global.Token, "token", "T", "", "NetBox API token (defaults to NETBOX_TOKEN env)")
	flags.StringVarP(&global.APIURL, "api-url", "A", "", "NetBox API URL (defaults to NETBOX_API_URL env)")
	flags.StringVar(&global.ConfigPath, "config", "", "Path to config file (defaults to NBCTL_CONFIG env)")
	flags.StringVar(&global.LogFormat, "log-format", handlers.LogFormatText, "Log format: text or json")
	flags.BoolVar(&global.Verbose, "verbose", false, "Log transport details and transaction journals")
	flags.DurationVar(&global.Timeout, "timeout", 0, "Timeout of a single API request (defaults to NETBOX_TIMEOUT_REQUEST env)")

	// Provisioning
	cmd.AddCommand(CreateVM())
	cmd.AddCommand(AddInterface())

	// Inventory maintenance
	cmd.AddCommand(AddCable())
	cmd.AddCommand(AddService())
	cmd.AddCommand(FindDevice())
	cmd.AddCommand(ListVMs())
	cmd.AddCommand(MarkUpgraded())
	cmd.AddCommand(UpdateVMStorage())
	cmd.AddCommand(SetInterfaceVLANs())
	cmd.AddCommand(SetInterfaceVDC())

	// Naming sync
	cmd.AddCommand(SyncInterfaceNaming())
	cmd.AddCommand(SyncPrimaryIPDNS())
	cmd.AddCommand(SyncSubnetNaming())

	// Utility commands
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
