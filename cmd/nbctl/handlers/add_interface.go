package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/nbctl/internal/provisioning/nic"
	"github.com/imamik/nbctl/internal/ui"
)

var addInterface = nic.Add

// AddInterface handles the add-interface command.
func AddInterface(ctx context.Context, opts Options, req nic.Request) error {
	s, err := newSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	res, err := addInterface(s.provisioningContext(ctx), req)
	if err != nil {
		return fmt.Errorf("add-interface %s:%s failed: %w", req.Target, req.Interface, err)
	}
	fmt.Fprint(stdout, ui.Success(res.String()))
	return nil
}
