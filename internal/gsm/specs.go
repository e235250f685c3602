package gsm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

const (
	specsPath = "/gsm/get-specifications-by-brandname-modelname"

	defaultSpecsTimeout   = 5 * time.Second
	defaultSpecsCacheSize = 1000
	defaultFailureTTL     = time.Minute

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 1 << 20
)

var errSpecsStatus = errors.New("unexpected status")

// SpecsClientConfig configures the remote specifications client.
type SpecsClientConfig struct {
	APIKey  string
	APIHost string
	BaseURL string

	// Timeout bounds each upstream request, including connect and body read.
	Timeout time.Duration

	// CacheSize is the number of device names memoised.
	CacheSize int

	// FailureTTL is how long a failed lookup is answered as absent without
	// asking the API again.
	FailureTTL time.Duration

	// HTTPClient overrides the transport. Its Timeout is left untouched.
	HTTPClient *http.Client
}

// lookupResult is one memoised answer. found=false means the API does not
// know the device.
type lookupResult struct {
	details Details
	found   bool
}

// SpecsClient looks up capabilities in the remote specifications API.
//
// Answers the API actually gave (a record, a 404, or a body without
// network details) are kept in an LRU cache keyed by device name.
// Transport faults, timeouts, throttling, server errors and unreadable
// bodies are also memoised as absent, but only for FailureTTL, so an
// outage costs one timeout per name rather than one per request.
//
// Concurrent lookups of the same uncached name share one upstream request.
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
type SpecsClient struct {
	apiKey     string
	apiHost    string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client

	cache    *lru.Cache[string, lookupResult]
	failures *expirable.LRU[string, struct{}]
	inflight singleflight.Group
	requests atomic.Int64

	logger Logger
}

// NewSpecsClient creates a client. An empty API key is an error; callers
// that have no key should not build a client at all.
func NewSpecsClient(cfg SpecsClientConfig) (*SpecsClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("specs client: api key is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("specs client: base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("specs client: parsing base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSpecsTimeout
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = defaultSpecsCacheSize
	}

	failureTTL := cfg.FailureTTL
	if failureTTL <= 0 {
		failureTTL = defaultFailureTTL
	}

	cache, err := lru.New[string, lookupResult](size)
	if err != nil {
		return nil, fmt.Errorf("specs client: creating cache: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &SpecsClient{
		apiKey:     cfg.APIKey,
		apiHost:    cfg.APIHost,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout:    timeout,
		httpClient: httpClient,
		cache:      cache,
		failures:   expirable.NewLRU[string, struct{}](size, nil, failureTTL),
		logger:     noopLogger{},
	}, nil
}

// SetLogger sets the logger for upstream faults.
func (c *SpecsClient) SetLogger(logger Logger) {
	c.logger = logger
}

// Lookup returns the capabilities the API reports for name.
// The second result is false when the API does not know the device or
// could not be reached.
func (c *SpecsClient) Lookup(ctx context.Context, name string) (Details, bool) {
	if res, ok := c.cached(name); ok {
		return res.details, res.found
	}

	v, _, _ := c.inflight.Do(name, func() (any, error) { //nolint:errcheck // Loader never fails
		if res, ok := c.cached(name); ok {
			return res, nil
		}

		// The shared fetch must not die with whichever caller started it.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		res, err := c.fetch(fetchCtx, name)
		if err != nil {
			c.logger.Warn("specs lookup failed", "device", name, "error", err)
			c.failures.Add(name, struct{}{})
			return lookupResult{}, nil
		}
		c.cache.Add(name, res)
		return res, nil
	})

	res := v.(lookupResult) //nolint:forcetypeassert // Only lookupResult is stored
	return res.details, res.found
}

// cached returns a memoised answer or a recent failure for name.
func (c *SpecsClient) cached(name string) (lookupResult, bool) {
	if res, ok := c.cache.Get(name); ok {
		return res, true
	}
	if _, ok := c.failures.Get(name); ok {
		return lookupResult{}, true
	}
	return lookupResult{}, false
}

// fetch performs one upstream request. A nil error means the answer is
// definitive and kept until evicted.
func (c *SpecsClient) fetch(ctx context.Context, name string) (lookupResult, error) {
	brand, model, ok := splitName(name)
	if !ok {
		return lookupResult{}, nil
	}

	endpoint := c.baseURL + specsPath + "/" + url.PathEscape(brand) + "/" + url.PathEscape(model)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return lookupResult{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.apiHost)
	req.Header.Set("Accept", "application/json")

	c.requests.Add(1)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return lookupResult{}, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes)) //nolint:errcheck // Draining for reuse
		return lookupResult{}, nil
	case resp.StatusCode != http.StatusOK:
		return lookupResult{}, fmt.Errorf("%w %d", errSpecsStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return lookupResult{}, fmt.Errorf("reading response: %w", err)
	}
	return parseSpecs(body)
}

// specsResponse is the part of the API response this service reads.
type specsResponse struct {
	GSMNetworkDetails map[string]any `json:"gsmNetworkDetails"`
}

// parseSpecs extracts the network details. A body without them is a
// valid "unknown device" answer. A body that is not JSON, or whose network
// fields are objects or arrays, is an error.
func parseSpecs(body []byte) (lookupResult, error) {
	var resp specsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return lookupResult{}, fmt.Errorf("decoding response: %w", err)
	}
	if resp.GSMNetworkDetails == nil {
		return lookupResult{}, nil
	}

	n := resp.GSMNetworkDetails
	var det Details
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"networkTechnology", &det.Technology},
		{"network2GBands", &det.TwoGBands},
		{"network3GBands", &det.ThreeGBands},
		{"network4GBands", &det.FourGBands},
	} {
		v, err := asString(n[f.key])
		if err != nil {
			return lookupResult{}, fmt.Errorf("decoding %s: %w", f.key, err)
		}
		*f.dst = v
	}
	return lookupResult{details: det, found: true}, nil
}

var errNotScalar = errors.New("not a scalar")

// asString renders a JSON scalar as text. Missing keys and nulls are "".
func asString(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		return "", errNotScalar
	}
}

// splitName cuts a device name at its first whitespace run into brand and
// model. Names without both parts cannot be looked up.
func splitName(name string) (brand, model string, ok bool) {
	i := strings.IndexFunc(name, unicode.IsSpace)
	if i <= 0 {
		return "", "", false
	}
	brand = name[:i]
	model = strings.TrimLeftFunc(name[i:], unicode.IsSpace)
	if model == "" {
		return "", "", false
	}
	return brand, model, true
}
