package netbox

import (
	"context"
	"net/http"
)

// GetTenant returns the tenant with the given name, or nil if none exists.
func (c *RealClient) GetTenant(ctx context.Context, name string) (*Tenant, error) {
	return getOne[Tenant](ctx, c, KindTenant, "name="+name, func(ctx context.Context, limit, offset int32) (*http.Response, error) {
		return drop(c.api.TenancyAPI.TenancyTenantsList(ctx).Name([]string{name}).Limit(limit).Offset(offset).Execute())
	})
}
