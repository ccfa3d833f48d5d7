package ipchecker

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard(t *testing.T) {
	checker, err := New("192.168.1.0/24")
	require.NoError(t, err)

	handler := checker.Guard(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		wantStatus int
	}{
		{name: "remote addr inside", remoteAddr: "192.168.1.10:5555", wantStatus: http.StatusOK},
		{name: "remote addr outside", remoteAddr: "10.0.0.1:5555", wantStatus: http.StatusForbidden},
		{
			name:       "x-real-ip wins",
			remoteAddr: "10.0.0.1:5555",
			headers:    map[string]string{"X-Real-IP": "192.168.1.20"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "first forwarded address",
			remoteAddr: "192.168.1.10:5555",
			headers:    map[string]string{"X-Forwarded-For": "172.16.0.1, 192.168.1.10"},
			wantStatus: http.StatusForbidden,
		},
		{name: "broken remote addr", remoteAddr: "garbage", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/internal/stats", nil)
			req.RemoteAddr = tt.remoteAddr
			for key, value := range tt.headers {
				req.Header.Set(key, value)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestEmptySubnetTrustsNobody(t *testing.T) {
	checker, err := New("")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "127.0.0.1:1234"
	ip, err := checker.GetClientIP(req)
	require.NoError(t, err)

	assert.False(t, checker.Check(ip))
}

func TestNewRejectsMalformedSubnet(t *testing.T) {
	_, err := New("10.0.0.0/99")
	assert.Error(t, err)
}
