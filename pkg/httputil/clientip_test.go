package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrustedProxies(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 192.0.2.7 ", "", "2001:db8::1"})
	require.NoError(t, err)
	require.Len(t, proxies, 3)

	assert.Equal(t, "192.0.2.7/32", proxies[1].String())
	assert.Equal(t, "2001:db8::1/128", proxies[2].String())

	for _, bad := range []string{"not-an-ip", "10.0.0.0/33"} {
		_, err := ParseTrustedProxies([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestTrustedProxies_Resolve(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		proxies    TrustedProxies
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "port is stripped",
			remoteAddr: "192.0.2.1:5678",
			want:       "192.0.2.1",
		},
		{
			name:       "ipv6 peer",
			remoteAddr: "[2001:db8::5]:443",
			want:       "2001:db8::5",
		},
		{
			name:       "headers ignored without trusted proxies",
			remoteAddr: "192.0.2.1:5678",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5", "X-Real-IP": "198.51.100.2"},
			want:       "192.0.2.1",
		},
		{
			name:       "headers ignored from untrusted peer",
			proxies:    proxies,
			remoteAddr: "192.0.2.1:5678",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5"},
			want:       "192.0.2.1",
		},
		{
			name:       "forwarded chain from trusted peer",
			proxies:    proxies,
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.2"},
			want:       "203.0.113.5",
		},
		{
			name:       "client-prepended hop is skipped",
			proxies:    proxies,
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "1.2.3.4, 203.0.113.5"},
			want:       "203.0.113.5",
		},
		{
			name:       "real ip header from trusted peer",
			proxies:    proxies,
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "198.51.100.2"},
			want:       "198.51.100.2",
		},
		{
			name:       "all hops trusted falls back to peer",
			proxies:    proxies,
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "10.0.0.3"},
			want:       "10.0.0.1",
		},
		{
			name:       "unparseable remote address",
			remoteAddr: "pipe",
			want:       "pipe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := tt.proxies.Resolve(req); got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientIPMiddleware(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{"10.0.0.1"})
	require.NoError(t, err)

	var got string
	handler := ClientIPMiddleware(proxies)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ClientIP(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:9999"
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "203.0.113.9", got)
}

func TestClientIP_WithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.44:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.9")

	assert.Equal(t, "192.0.2.44", ClientIP(req))
}
