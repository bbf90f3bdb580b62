package model

// CountryCodeLocal is the synthetic country code for private, loopback,
// link-local, and unknown-sentinel addresses. Sessions observed from LOCAL
// origins are exempt from country-change detection.
const CountryCodeLocal = "LOCAL"

// GeoLocation is the coarse origin of a client IP. Country fields may be
// empty when the lookup degraded; an absent country is "no signal", not LOCAL
// and not foreign.
type GeoLocation struct {
	IP          string `json:"ip"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	City        string `json:"city,omitempty"`
}

// HasCountry reports whether the lookup yielded a usable country signal.
func (g *GeoLocation) HasCountry() bool {
	return g != nil && g.CountryCode != ""
}

// IsLocal reports whether the origin resolved to the LOCAL sentinel.
func (g *GeoLocation) IsLocal() bool {
	return g != nil && g.CountryCode == CountryCodeLocal
}

// LocalLocation returns the synthetic result for non-routable origins.
func LocalLocation(ip string) *GeoLocation {
	return &GeoLocation{
		IP:          ip,
		Country:     "Local",
		CountryCode: CountryCodeLocal,
	}
}

// UnknownLocation returns a result carrying only the input IP, used when the
// lookup timed out or the provider errored.
func UnknownLocation(ip string) *GeoLocation {
	return &GeoLocation{IP: ip}
}
