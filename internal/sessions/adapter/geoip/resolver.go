package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"sessionguard/internal/sessions/domain/model"
	"sessionguard/internal/sessions/domain/repository"
	"sessionguard/internal/shared/logger"
)

// DefaultLookupTimeout bounds a single provider call. A slow geolocation
// provider must not stall authenticated request handling beyond this budget.
const DefaultLookupTimeout = 3 * time.Second

// unknownIPSentinel is the literal some proxies forward when the client
// address could not be determined.
const unknownIPSentinel = "unknown"

// providerResponse is the wire shape of the lookup provider's answer.
type providerResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	City        string `json:"city"`
}

// HTTPResolver resolves client IPs against an ip-api style HTTP provider.
// It is stateless and never returns an error: lookups degrade to a
// country-less result so "unknown" stays a first-class state distinct from
// both "local" and "foreign".
type HTTPResolver struct {
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

// NewHTTPResolver creates a resolver against baseURL (e.g.
// "http://ip-api.com/json"). The per-lookup timeout applies on top of any
// deadline already on the caller's context.
func NewHTTPResolver(baseURL string, timeout time.Duration, log logger.Logger) *HTTPResolver {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	if log == nil {
		log = logger.NewLogger()
	}
	return &HTTPResolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  log.WithComponent("geoip-resolver"),
	}
}

// Resolve maps ip to a coarse location. Private, loopback, link-local, and
// unknown-sentinel addresses short-circuit to the LOCAL result with no network
// call, so local/dev traffic can never trigger country-change eviction.
func (r *HTTPResolver) Resolve(ctx context.Context, ip string) *model.GeoLocation {
	if IsNonRoutable(ip) {
		return model.LocalLocation(ip)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(lookupCtx, http.MethodGet, fmt.Sprintf("%s/%s", r.baseURL, ip), nil)
	if err != nil {
		r.logger.Warnf("Failed to build geolocation request for %s: %v", ip, err)
		return model.UnknownLocation(ip)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		// Timeout or transport failure: one bounded attempt, no retries.
		r.logger.Warnf("Geolocation lookup failed for %s: %v", ip, err)
		return model.UnknownLocation(ip)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		r.logger.Warnf("Geolocation provider returned status %d for %s", resp.StatusCode, ip)
		return model.UnknownLocation(ip)
	}

	var body providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		r.logger.Warnf("Failed to decode geolocation response for %s: %v", ip, err)
		return model.UnknownLocation(ip)
	}
	if body.Status != "" && body.Status != "success" {
		r.logger.Debugf("Geolocation provider reported failure for %s: %s", ip, body.Message)
		return model.UnknownLocation(ip)
	}

	return &model.GeoLocation{
		IP:          ip,
		Country:     body.Country,
		CountryCode: body.CountryCode,
		City:        body.City,
	}
}

// IsNonRoutable reports whether ip should be treated as a local origin:
// empty, the "unknown" sentinel, unparsable, private, loopback, link-local,
// or unspecified.
func IsNonRoutable(ip string) bool {
	if ip == "" || ip == unknownIPSentinel {
		return true
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return true
	}
	return parsed.IsPrivate() ||
		parsed.IsLoopback() ||
		parsed.IsLinkLocalUnicast() ||
		parsed.IsLinkLocalMulticast() ||
		parsed.IsUnspecified()
}

// Ensure HTTPResolver implements GeoResolver
var _ repository.GeoResolver = (*HTTPResolver)(nil)
