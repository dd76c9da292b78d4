package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/nbctl/internal/provisioning"
	"github.com/imamik/nbctl/internal/provisioning/vm"
	"github.com/imamik/nbctl/internal/ui"
)

// VMProvisioner is implemented by vm.Provisioner.
type VMProvisioner interface {
	Provision(pctx *provisioning.Context, req *vm.ProvisionRequest) (*vm.Result, error)
}

var newVMProvisioner = func(opts ...vm.Option) VMProvisioner {
	return vm.NewProvisioner(opts...)
}

// CreateVMOptions controls how create-vm interacts with the operator.
type CreateVMOptions struct {
	// Batch never prompts, even on a terminal.
	Batch  bool
	DryRun bool
}

// CreateVM handles the create-vm command.
//
// Tenant, site, cluster and role fall back to the configured defaults. On
// an interactive terminal the operator is asked after the commit whether
// the VM should be rolled back anyway.
func CreateVM(ctx context.Context, opts Options, spec vm.Spec, run CreateVMOptions) error {
	s, err := newSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	if spec.Tenant == "" {
		spec.Tenant = s.cfg.DefaultTenant
	}
	if spec.Site == "" {
		spec.Site = s.cfg.DefaultSite
	}
	if spec.Cluster == "" {
		spec.Cluster = s.cfg.DefaultCluster
	}
	if spec.RoleID == 0 {
		spec.RoleID = s.cfg.RoleID
	}
	req := vm.NewRequest(spec)

	var confirmer ui.Confirmer
	if !run.DryRun && interactive(run.Batch) {
		confirmer = newConfirmer()
	}
	p := newVMProvisioner(vm.WithConfirmer(confirmer), vm.WithDryRun(run.DryRun))

	res, err := p.Provision(s.provisioningContext(ctx), req)
	if err != nil {
		var rb *provisioning.RolledBackError
		if vm.IsDiscarded(err) && errors.As(err, &rb) && rb.Clean() {
			fmt.Fprint(stdout, ui.Warning(fmt.Sprintf("virtual machine %s discarded, all records removed", req.Name())))
			return nil
		}
		return fmt.Errorf("create-vm %s failed: %w", req.Name(), err)
	}

	title := fmt.Sprintf("Virtual machine %s created", req.Name())
	if res.DryRun {
		title = fmt.Sprintf("Dry run for %s, nothing was written", req.Name())
	}
	fmt.Fprint(stdout, ui.Summary(title, res.Summary(req)))
	return nil
}
