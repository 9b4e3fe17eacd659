// Package ssl provides the ssl:// adapter, which inspects the certificate
// a TLS server presents.
//
// ssl://example.com summarises the leaf certificate; ssl://example.com:8443/san
// lists its subject alternative names. Verification failures are reported
// in the result rather than failing the query.
package ssl

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"fmt"
	"math"
	"net"
	"time"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
	"github.com/custodia-labs/reveal-cli/internal/core/ports/driven"
)

// Scheme is the locator scheme served by this adapter.
const Scheme = "ssl"

// DefaultPort is used when the resource has no port.
const DefaultPort = "443"

// Element names.
const (
	ElementSAN      = "san"
	ElementChain    = "chain"
	ElementSubject  = "subject"
	ElementIssuer   = "issuer"
	ElementValidity = "validity"
)

var elementInfos = []domain.ElementInfo{
	{Name: ElementSAN, Description: "Subject alternative names", Example: "ssl://example.com/san"},
	{Name: ElementChain, Description: "Presented certificate chain", Example: "ssl://example.com/chain"},
	{Name: ElementSubject, Description: "Leaf subject distinguished name", Example: "ssl://example.com/subject"},
	{Name: ElementIssuer, Description: "Leaf issuer distinguished name", Example: "ssl://example.com/issuer"},
	{Name: ElementValidity, Description: "Validity window and expiry", Example: "ssl://example.com/validity"},
}

// Ensure Adapter implements the interface.
var _ driven.Adapter = (*Adapter)(nil)

// Adapter dials TLS endpoints and reports on their certificates.
type Adapter struct {
	timeout time.Duration
	roots   *x509.CertPool
	now     func() time.Time
}

// New creates an ssl adapter. The timeout bounds dial plus handshake;
// verification uses the system roots.
func New(timeout time.Duration) *Adapter {
	return &Adapter{timeout: timeout, now: time.Now}
}

// Scheme returns "ssl".
func (a *Adapter) Scheme() string {
	return Scheme
}

// DescribeCapabilities returns the adapter's descriptor.
func (a *Adapter) DescribeCapabilities() domain.Capabilities {
	return domain.Capabilities{
		Scheme:            Scheme,
		Description:       "TLS certificates presented by a host",
		Structure:         true,
		Element:           true,
		AvailableElements: true,
		Schema: []domain.FieldSchema{
			{Name: "host", Type: "string"},
			{Name: "port", Type: "string"},
			{Name: "subject", Type: "string", Description: "Leaf subject DN"},
			{Name: "issuer", Type: "string", Description: "Leaf issuer DN"},
			{Name: "serial", Type: "string"},
			{Name: "notBefore", Type: "time"},
			{Name: "notAfter", Type: "time"},
			{Name: "daysRemaining", Type: "int"},
			{Name: "expired", Type: "bool"},
			{Name: "san", Type: "[]string"},
			{Name: "tlsVersion", Type: "string"},
			{Name: "cipherSuite", Type: "string"},
			{Name: "verified", Type: "bool", Description: "Chain verifies for the host against system roots"},
			{Name: "verifyError", Type: "string"},
		},
		Examples: []string{
			"ssl://example.com",
			"ssl://example.com:8443/san",
			"ssl://example.com/chain?fields=subject,notAfter",
		},
	}
}

// connection is what one handshake yielded.
type connection struct {
	host  string
	port  string
	state tls.ConnectionState
}

func (c *connection) leaf() *x509.Certificate {
	return c.state.PeerCertificates[0]
}

// ResolveStructure summarises the leaf certificate.
func (a *Adapter) ResolveStructure(ctx context.Context, loc domain.Locator) (domain.AdapterResult, error) {
	conn, err := a.connect(ctx, loc.Resource)
	if err != nil {
		return domain.AdapterResult{}, err
	}

	leaf := conn.leaf()
	names := make([]any, 0)
	for _, san := range subjectAltNames(leaf) {
		name, _ := san.Get("name")
		names = append(names, name)
	}

	obj := domain.NewObject().
		Set("host", conn.host).
		Set("port", conn.port).
		Set("subject", leaf.Subject.String()).
		Set("issuer", leaf.Issuer.String()).
		Set("serial", leaf.SerialNumber.String()).
		Set("notBefore", formatTime(leaf.NotBefore)).
		Set("notAfter", formatTime(leaf.NotAfter)).
		Set("daysRemaining", a.daysRemaining(leaf)).
		Set("expired", a.now().After(leaf.NotAfter)).
		Set("san", names).
		Set("signatureAlgorithm", leaf.SignatureAlgorithm.String()).
		Set("publicKeyAlgorithm", leaf.PublicKeyAlgorithm.String()).
		Set("tlsVersion", tls.VersionName(conn.state.Version)).
		Set("cipherSuite", tls.CipherSuiteName(conn.state.CipherSuite)).
		Set("chainLength", len(conn.state.PeerCertificates))

	if err := a.verify(conn); err != nil {
		obj.Set("verified", false).Set("verifyError", err.Error())
	} else {
		obj.Set("verified", true)
	}

	return domain.SingleResult(obj), nil
}

// ResolveElement returns one certificate facet.
func (a *Adapter) ResolveElement(ctx context.Context, loc domain.Locator, name string) (*domain.AdapterResult, error) {
	if !isElement(name) {
		return nil, nil
	}

	conn, err := a.connect(ctx, loc.Resource)
	if err != nil {
		return nil, err
	}
	leaf := conn.leaf()

	var result domain.AdapterResult
	switch name {
	case ElementSAN:
		result = domain.SequenceResult(subjectAltNames(leaf))
	case ElementChain:
		items := make([]*domain.Object, 0, len(conn.state.PeerCertificates))
		for i, cert := range conn.state.PeerCertificates {
			items = append(items, domain.NewObject().
				Set("index", i).
				Set("subject", cert.Subject.String()).
				Set("issuer", cert.Issuer.String()).
				Set("serial", cert.SerialNumber.String()).
				Set("notBefore", formatTime(cert.NotBefore)).
				Set("notAfter", formatTime(cert.NotAfter)).
				Set("isCA", cert.IsCA).
				Set("selfSigned", cert.Subject.String() == cert.Issuer.String()))
		}
		result = domain.SequenceResult(items)
	case ElementSubject:
		result = domain.SingleResult(distinguishedName(leaf.Subject))
	case ElementIssuer:
		result = domain.SingleResult(distinguishedName(leaf.Issuer))
	case ElementValidity:
		result = domain.SingleResult(domain.NewObject().
			Set("notBefore", formatTime(leaf.NotBefore)).
			Set("notAfter", formatTime(leaf.NotAfter)).
			Set("daysRemaining", a.daysRemaining(leaf)).
			Set("expired", a.now().After(leaf.NotAfter)).
			Set("notYetValid", a.now().Before(leaf.NotBefore)))
	}
	return &result, nil
}

// ListAvailableElements returns the fixed element set.
func (a *Adapter) ListAvailableElements(_ context.Context, _ domain.Locator) ([]domain.ElementInfo, error) {
	out := make([]domain.ElementInfo, len(elementInfos))
	copy(out, elementInfos)
	return out, nil
}

func isElement(name string) bool {
	for _, e := range elementInfos {
		if e.Name == name {
			return true
		}
	}
	return false
}

// connect performs one handshake without verification so that invalid
// certificates can still be inspected.
func (a *Adapter) connect(ctx context.Context, resource string) (*connection, error) {
	host, port, err := SplitHostPort(resource)
	if err != nil {
		return nil, err
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{},
		Config: &tls.Config{
			ServerName:         host,
			InsecureSkipVerify: true, //nolint:gosec // verified separately in verify
		},
	}
	raw, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return nil, fmt.Errorf("tls handshake with %s: %w", net.JoinHostPort(host, port), err)
	}
	defer raw.Close()

	tlsConn, ok := raw.(*tls.Conn)
	if !ok {
		return nil, errors.New("dialer returned a non-TLS connection")
	}
	state := tlsConn.ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return nil, fmt.Errorf("%s presented no certificates", host)
	}

	return &connection{host: host, port: port, state: state}, nil
}

func (a *Adapter) verify(conn *connection) error {
	intermediates := x509.NewCertPool()
	for _, cert := range conn.state.PeerCertificates[1:] {
		intermediates.AddCert(cert)
	}
	_, err := conn.leaf().Verify(x509.VerifyOptions{
		DNSName:       conn.host,
		Roots:         a.roots,
		Intermediates: intermediates,
		CurrentTime:   a.now(),
	})
	return err
}

func (a *Adapter) daysRemaining(cert *x509.Certificate) int {
	return int(math.Floor(cert.NotAfter.Sub(a.now()).Hours() / 24))
}

// SplitHostPort splits a resource into host and port, defaulting to 443.
func SplitHostPort(resource string) (string, string, error) {
	if resource == "" {
		return "", "", fmt.Errorf("%w: ssl locator needs a host", domain.ErrInvalidInput)
	}
	host, port, err := net.SplitHostPort(resource)
	if err != nil {
		// No port, possibly a bracketed IPv6 literal.
		host = resource
		if len(host) > 1 && host[0] == '[' && host[len(host)-1] == ']' {
			host = host[1 : len(host)-1]
		}
		return host, DefaultPort, nil
	}
	if host == "" {
		return "", "", fmt.Errorf("%w: ssl locator needs a host", domain.ErrInvalidInput)
	}
	return host, port, nil
}

func subjectAltNames(cert *x509.Certificate) []*domain.Object {
	var sans []*domain.Object
	add := func(kind, name string) {
		sans = append(sans, domain.NewObject().Set("name", name).Set("type", kind))
	}
	for _, n := range cert.DNSNames {
		add("dns", n)
	}
	for _, ip := range cert.IPAddresses {
		add("ip", ip.String())
	}
	for _, e := range cert.EmailAddresses {
		add("email", e)
	}
	for _, u := range cert.URIs {
		add("uri", u.String())
	}
	return sans
}

func distinguishedName(name pkix.Name) *domain.Object {
	return domain.NewObject().
		Set("dn", name.String()).
		Set("commonName", name.CommonName).
		Set("organization", stringList(name.Organization)).
		Set("organizationalUnit", stringList(name.OrganizationalUnit)).
		Set("country", stringList(name.Country)).
		Set("province", stringList(name.Province)).
		Set("locality", stringList(name.Locality))
}

func stringList(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
