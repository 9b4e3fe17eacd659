package ssl

import (
	"context"
	"crypto/x509"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
)

func newTLSServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server
}

func resourceOf(server *httptest.Server) string {
	return strings.TrimPrefix(server.URL, "https://")
}

func trustingAdapter(server *httptest.Server) *Adapter {
	a := New(5 * time.Second)
	a.roots = x509.NewCertPool()
	a.roots.AddCert(server.Certificate())
	return a
}

func TestAdapter_ResolveStructure(t *testing.T) {
	server := newTLSServer(t)
	adapter := trustingAdapter(server)

	result, err := adapter.ResolveStructure(context.Background(), domain.Locator{Scheme: Scheme, Resource: resourceOf(server)})

	require.NoError(t, err)
	require.False(t, result.IsSequence())
	obj := result.Object

	host, _ := obj.Get("host")
	assert.Equal(t, "127.0.0.1", host)
	subject, _ := obj.Get("subject")
	assert.Contains(t, subject, "Acme Co")
	verified, _ := obj.Get("verified")
	assert.Equal(t, true, verified)
	assert.False(t, obj.Has("verifyError"))
	expired, _ := obj.Get("expired")
	assert.Equal(t, false, expired)
	san, _ := obj.Get("san")
	assert.Contains(t, san, "example.com")
	assert.Contains(t, san, "127.0.0.1")
	version, _ := obj.Get("tlsVersion")
	assert.Equal(t, "TLS 1.3", version)
}

func TestAdapter_ResolveStructure_UntrustedStillInspected(t *testing.T) {
	server := newTLSServer(t)
	adapter := New(5 * time.Second)
	adapter.roots = x509.NewCertPool()

	result, err := adapter.ResolveStructure(context.Background(), domain.Locator{Scheme: Scheme, Resource: resourceOf(server)})

	require.NoError(t, err)
	verified, _ := result.Object.Get("verified")
	assert.Equal(t, false, verified)
	verifyErr, _ := result.Object.Get("verifyError")
	assert.NotEmpty(t, verifyErr)
}

func TestAdapter_ResolveElement(t *testing.T) {
	server := newTLSServer(t)
	adapter := trustingAdapter(server)
	loc := domain.Locator{Scheme: Scheme, Resource: resourceOf(server)}

	t.Run("san", func(t *testing.T) {
		result, err := adapter.ResolveElement(context.Background(), loc, ElementSAN)
		require.NoError(t, err)
		require.NotNil(t, result)
		require.True(t, result.IsSequence())

		out, err := result.Items[0].MarshalJSON()
		require.NoError(t, err)
		assert.Equal(t, `{"name":"example.com","type":"dns"}`, string(out))
	})

	t.Run("chain", func(t *testing.T) {
		result, err := adapter.ResolveElement(context.Background(), loc, ElementChain)
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		isCA, _ := result.Items[0].Get("isCA")
		assert.Equal(t, true, isCA)
	})

	t.Run("subject", func(t *testing.T) {
		result, err := adapter.ResolveElement(context.Background(), loc, ElementSubject)
		require.NoError(t, err)
		org, _ := result.Object.Get("organization")
		assert.Equal(t, []any{"Acme Co"}, org)
	})

	t.Run("validity", func(t *testing.T) {
		result, err := adapter.ResolveElement(context.Background(), loc, ElementValidity)
		require.NoError(t, err)
		days, _ := result.Object.Get("daysRemaining")
		assert.Greater(t, days, 365)
	})

	t.Run("unknown", func(t *testing.T) {
		result, err := adapter.ResolveElement(context.Background(), loc, "nope")
		require.NoError(t, err)
		assert.Nil(t, result)
	})
}

func TestAdapter_ExpiredAtLaterTime(t *testing.T) {
	server := newTLSServer(t)
	adapter := trustingAdapter(server)
	adapter.now = func() time.Time { return time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC) }

	result, err := adapter.ResolveElement(context.Background(), domain.Locator{Scheme: Scheme, Resource: resourceOf(server)}, ElementValidity)

	require.NoError(t, err)
	expired, _ := result.Object.Get("expired")
	assert.Equal(t, true, expired)
	days, _ := result.Object.Get("daysRemaining")
	assert.Less(t, days, 0)
}

func TestAdapter_ConnectionRefused(t *testing.T) {
	server := newTLSServer(t)
	resource := resourceOf(server)
	server.Close()

	_, err := New(time.Second).ResolveStructure(context.Background(), domain.Locator{Scheme: Scheme, Resource: resource})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "tls handshake")
}

func TestAdapter_ListAvailableElements(t *testing.T) {
	elements, err := New(time.Second).ListAvailableElements(context.Background(), domain.Locator{})

	require.NoError(t, err)
	var names []string
	for _, e := range elements {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"san", "chain", "subject", "issuer", "validity"}, names)
}

func TestSplitHostPort(t *testing.T) {
	tests := []struct {
		resource string
		host     string
		port     string
	}{
		{"example.com", "example.com", "443"},
		{"example.com:8443", "example.com", "8443"},
		{"[::1]:8443", "::1", "8443"},
		{"[::1]", "::1", "443"},
	}

	for _, tt := range tests {
		t.Run(tt.resource, func(t *testing.T) {
			host, port, err := SplitHostPort(tt.resource)
			require.NoError(t, err)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.port, port)
		})
	}

	_, _, err := SplitHostPort("")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, _, err = SplitHostPort(":443")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
