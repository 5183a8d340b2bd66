package reddit

import (
	"net/http"
	"path"

	"github.com/vadim/reddit-insight/internal/metrics"
)

// userAgentTransport stamps every request with the credential's user agent
type userAgentTransport struct {
	userAgent string
	base      http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(r)
}

// instrumentedTransport counts every outbound request by endpoint and status
type instrumentedTransport struct {
	metrics *metrics.Metrics
	base    http.RoundTripper
}

func (t *instrumentedTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(r)
	var statusCode int
	if resp != nil {
		statusCode = resp.StatusCode
	}
	t.metrics.UpstreamRequest(path.Base(r.URL.Path), statusCode)
	return resp, err
}

// instrument returns a copy of hc whose transport records upstream metrics
func instrument(hc *http.Client, m *metrics.Metrics) *http.Client {
	if m == nil {
		return hc
	}
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	cp := *hc
	cp.Transport = &instrumentedTransport{metrics: m, base: base}
	return &cp
}
