package netbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-retryablehttp"
	nb "github.com/netbox-community/go-netbox/v4"

	"github.com/imamik/nbctl/internal/config"
)

// pageSize is the limit requested for list calls.
const pageSize = 250

const userAgent = "nbctl"

// RealClient implements Inventory on top of the go-netbox API client.
// Responses are decoded into the records of this package so callers never
// see the generated models.
type RealClient struct {
	api      *nb.APIClient
	http     *http.Client
	baseURL  *url.URL
	token    string
	timeouts *config.Timeouts

	// retrying serves idempotent requests, once serves POST.
	retrying *retryablehttp.Client
	once     *retryablehttp.Client
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithTimeouts sets custom timeouts for the client.
func WithTimeouts(t *config.Timeouts) ClientOption {
	return func(c *RealClient) {
		c.timeouts = t
		c.retrying.RetryMax = t.HTTPRetryMax
	}
}

// WithHTTPClient sets the underlying HTTP client (useful for testing).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *RealClient) {
		c.retrying.HTTPClient = hc
		c.once.HTTPClient = hc
	}
}

// WithRetryWait bounds the backoff between transport retries.
func WithRetryWait(minWait, maxWait time.Duration) ClientOption {
	return func(c *RealClient) {
		c.retrying.RetryWaitMin = minWait
		c.retrying.RetryWaitMax = maxWait
	}
}

// WithLogger routes transport logs to the given logger at debug verbosity.
func WithLogger(log logr.Logger) ClientOption {
	return func(c *RealClient) {
		l := leveledLogger{log: log}
		c.retrying.Logger = l
		c.once.Logger = l
	}
}

// NewRealClient creates a client for the NetBox instance at apiURL.
// The URL may point at the site root or at its /api/ path.
func NewRealClient(apiURL, token string, opts ...ClientOption) (*RealClient, error) {
	u, err := url.Parse(strings.TrimSpace(apiURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid NetBox API URL %q", apiURL)
	}
	u.Path = strings.TrimSuffix(strings.TrimSuffix(u.Path, "/"), "/api")
	u.RawQuery = ""

	timeouts := config.LoadTimeouts()

	retrying := retryablehttp.NewClient()
	retrying.RetryMax = timeouts.HTTPRetryMax
	retrying.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retrying.Logger = nil

	once := retryablehttp.NewClient()
	once.RetryMax = 0
	once.ErrorHandler = retryablehttp.PassthroughErrorHandler
	once.Logger = nil

	c := &RealClient{
		baseURL:  u,
		token:    token,
		timeouts: timeouts,
		retrying: retrying,
		once:     once,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http = &http.Client{Transport: methodTransport{
		retrying: &retryablehttp.RoundTripper{Client: c.retrying},
		once:     &retryablehttp.RoundTripper{Client: c.once},
	}}

	cfg := nb.NewConfiguration()
	cfg.Servers = nb.ServerConfigurations{{URL: u.String()}}
	cfg.HTTPClient = c.http
	cfg.UserAgent = userAgent
	cfg.AddDefaultHeader("Authorization", "Token "+token)
	c.api = nb.NewAPIClient(cfg)
	return c, nil
}

// methodTransport sends POST through the client that never retries.
type methodTransport struct {
	retrying http.RoundTripper
	once     http.RoundTripper
}

func (t methodTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method == http.MethodPost {
		return t.once.RoundTrip(req)
	}
	return t.retrying.RoundTrip(req)
}

// sender performs one HTTP exchange, usually a go-netbox Execute call.
type sender func(ctx context.Context) (*http.Response, error)

// exec runs send under the request timeout and decodes the response body into out.
// Non-2xx responses become *APIError. Decode errors of the generated models
// are ignored because out is decoded from the buffered body instead.
func (c *RealClient) exec(ctx context.Context, method, path string, out any, send sender) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Request)
	defer cancel()

	resp, err := send(ctx)
	if resp == nil {
		if err == nil {
			err = errors.New("no response")
		}
		return fmt.Errorf("netbox %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, rerr := io.ReadAll(resp.Body)
	if rerr != nil {
		return fmt.Errorf("netbox %s %s: failed to read response: %w", method, path, rerr)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(method, path, resp.StatusCode, data)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("netbox %s %s: failed to decode response: %w", method, path, err)
	}
	return nil
}

// raw builds a sender for endpoints the generated client cannot express.
func (c *RealClient) raw(method, path string, q url.Values, body any) sender {
	return func(ctx context.Context) (*http.Response, error) {
		var rd io.Reader
		if body != nil {
			payload, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("failed to encode %s request: %w", method, err)
			}
			rd = bytes.NewReader(payload)
		}
		u := *c.baseURL
		u.Path += path
		u.RawQuery = q.Encode()
		req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s request: %w", method, err)
		}
		req.Header.Set("Authorization", "Token "+c.token)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return c.http.Do(req)
	}
}

// apiPath returns the request path of a collection or, with an ID, of one object.
func apiPath(kind string, id ...int) string {
	p := "/api/" + kind + "/"
	for _, i := range id {
		p += strconv.Itoa(i) + "/"
	}
	return p
}

// convert re-decodes a request body of this package into a go-netbox model.
func convert[M any](body any) (M, error) {
	var m M
	data, err := json.Marshal(body)
	if err != nil {
		return m, fmt.Errorf("failed to encode request: %w", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("invalid %T: %w", m, err)
	}
	return m, nil
}

// drop discards the generated model of an Execute result.
func drop[M any](_ M, resp *http.Response, err error) (*http.Response, error) {
	return resp, err
}

type page[T any] struct {
	Count   int     `json:"count"`
	Next    *string `json:"next"`
	Results []T     `json:"results"`
}

// pager fetches one page of a collection.
type pager func(ctx context.Context, limit, offset int32) (*http.Response, error)

// list fetches every page of a collection.
func list[T any](ctx context.Context, c *RealClient, kind string, fetch pager) ([]T, error) {
	var all []T
	var offset int32
	for {
		var p page[T]
		err := c.exec(ctx, http.MethodGet, apiPath(kind), &p, func(ctx context.Context) (*http.Response, error) {
			return fetch(ctx, pageSize, offset)
		})
		if err != nil {
			return nil, err
		}
		all = append(all, p.Results...)
		if p.Next == nil || *p.Next == "" || len(p.Results) == 0 {
			return all, nil
		}
		offset += int32(len(p.Results))
	}
}

// getOne returns the single match of a filtered list, or nil if none matched.
func getOne[T any](ctx context.Context, c *RealClient, kind, filter string, fetch pager) (*T, error) {
	items, err := list[T](ctx, c, kind, fetch)
	if err != nil {
		return nil, err
	}
	switch len(items) {
	case 0:
		return nil, nil
	case 1:
		return &items[0], nil
	default:
		return nil, fmt.Errorf("%s %s: %w", kind, filter, ErrMultipleResults)
	}
}

// object runs a single-object call and decodes the result.
func object[T any](ctx context.Context, c *RealClient, method, path string, send sender) (*T, error) {
	var out T
	if err := c.exec(ctx, method, path, &out, send); err != nil {
		return nil, err
	}
	return &out, nil
}

// rawPager lists an endpoint with a hand-built query.
func (c *RealClient) rawPager(kind string, q url.Values) pager {
	return func(ctx context.Context, limit, offset int32) (*http.Response, error) {
		paged := url.Values{}
		for k, v := range q {
			paged[k] = v
		}
		paged.Set("limit", strconv.Itoa(int(limit)))
		paged.Set("offset", strconv.Itoa(int(offset)))
		return c.raw(http.MethodGet, apiPath(kind), paged, nil)(ctx)
	}
}

// Delete removes the referenced object.
func (c *RealClient) Delete(ctx context.Context, ref ObjectRef) error {
	if ref.Kind == "" || ref.ID <= 0 {
		return fmt.Errorf("cannot delete incomplete reference %s", ref)
	}
	id := int32(ref.ID)
	var send sender
	switch ref.Kind {
	case KindVirtualMachine:
		send = func(ctx context.Context) (*http.Response, error) {
			return c.api.VirtualizationAPI.VirtualizationVirtualMachinesDestroy(ctx, id).Execute()
		}
	case KindVMInterface:
		send = func(ctx context.Context) (*http.Response, error) {
			return c.api.VirtualizationAPI.VirtualizationInterfacesDestroy(ctx, id).Execute()
		}
	case KindCluster:
		send = func(ctx context.Context) (*http.Response, error) {
			return c.api.VirtualizationAPI.VirtualizationClustersDestroy(ctx, id).Execute()
		}
	case KindDevice:
		send = func(ctx context.Context) (*http.Response, error) {
			return c.api.DcimAPI.DcimDevicesDestroy(ctx, id).Execute()
		}
	case KindDeviceInterface:
		send = func(ctx context.Context) (*http.Response, error) {
			return c.api.DcimAPI.DcimInterfacesDestroy(ctx, id).Execute()
		}
	case KindMACAddress:
		send = func(ctx context.Context) (*http.Response, error) {
			return c.api.DcimAPI.DcimMacAddressesDestroy(ctx, id).Execute()
		}
	case KindSite:
		send = func(ctx context.Context) (*http.Response, error) {
			return c.api.DcimAPI.DcimSitesDestroy(ctx, id).Execute()
		}
	case KindPlatform:
		send = func(ctx context.Context) (*http.Response, error) {
			return c.api.DcimAPI.DcimPlatformsDestroy(ctx, id).Execute()
		}
	case KindCable:
		send = func(ctx context.Context) (*http.Response, error) {
			return c.api.DcimAPI.DcimCablesDestroy(ctx, id).Execute()
		}
	case KindVDC:
		send = func(ctx context.Context) (*http.Response, error) {
			return c.api.DcimAPI.DcimVirtualDeviceContextsDestroy(ctx, id).Execute()
		}
	case KindIPAddress:
		send = func(ctx context.Context) (*http.Response, error) {
			return c.api.IpamAPI.IpamIpAddressesDestroy(ctx, id).Execute()
		}
	case KindPrefix:
		send = func(ctx context.Context) (*http.Response, error) {
			return c.api.IpamAPI.IpamPrefixesDestroy(ctx, id).Execute()
		}
	case KindVLAN:
		send = func(ctx context.Context) (*http.Response, error) {
			return c.api.IpamAPI.IpamVlansDestroy(ctx, id).Execute()
		}
	case KindService:
		send = func(ctx context.Context) (*http.Response, error) {
			return c.api.IpamAPI.IpamServicesDestroy(ctx, id).Execute()
		}
	case KindTenant:
		send = func(ctx context.Context) (*http.Response, error) {
			return c.api.TenancyAPI.TenancyTenantsDestroy(ctx, id).Execute()
		}
	default:
		return fmt.Errorf("cannot delete %s: unsupported kind", ref)
	}
	return c.exec(ctx, http.MethodDelete, apiPath(ref.Kind, ref.ID), nil, send)
}

// leveledLogger adapts logr to retryablehttp.LeveledLogger.
type leveledLogger struct {
	log logr.Logger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.log.V(1).Info(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.log.V(1).Info(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.log.V(2).Info(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.log.V(1).Info(msg, kv...) }

var _ Inventory = (*RealClient)(nil)
var _ retryablehttp.LeveledLogger = leveledLogger{}
