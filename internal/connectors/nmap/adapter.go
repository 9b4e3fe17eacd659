// Package nmap provides the nmap:// adapter, which runs an nmap service
// scan against one host.
//
// nmap://scanme.nmap.org summarises the host; the ports element lists every
// scanned port and services only the open ones. The nmap binary must be on
// PATH.
package nmap

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ullaakut/nmap/v3"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
	"github.com/custodia-labs/reveal-cli/internal/core/ports/driven"
	"github.com/custodia-labs/reveal-cli/internal/logger"
)

// Scheme is the locator scheme served by this adapter.
const Scheme = "nmap"

// Element names.
const (
	ElementPorts    = "ports"
	ElementServices = "services"
)

// ScanFunc runs one scan. It is replaced in tests.
type ScanFunc func(ctx context.Context, target, ports string) (*nmap.Run, error)

// Ensure Adapter implements the interface.
var _ driven.Adapter = (*Adapter)(nil)

// Adapter scans hosts with nmap.
type Adapter struct {
	ports string
	scan  ScanFunc
}

// New creates an nmap adapter scanning the given port range.
func New(ports string) *Adapter {
	return &Adapter{ports: ports, scan: runScan}
}

// Scheme returns "nmap".
func (a *Adapter) Scheme() string {
	return Scheme
}

// DescribeCapabilities returns the adapter's descriptor.
func (a *Adapter) DescribeCapabilities() domain.Capabilities {
	return domain.Capabilities{
		Scheme:            Scheme,
		Description:       "Port and service scan of a host (requires nmap)",
		Structure:         true,
		Element:           true,
		AvailableElements: true,
		Schema: []domain.FieldSchema{
			{Name: "port", Type: "int"},
			{Name: "protocol", Type: "string", Description: "tcp or udp"},
			{Name: "state", Type: "string", Description: "open, closed or filtered"},
			{Name: "service", Type: "string"},
			{Name: "product", Type: "string", Description: "services only"},
			{Name: "version", Type: "string", Description: "services only"},
		},
		Examples: []string{
			"nmap://scanme.nmap.org",
			"nmap://10.0.0.5/ports?state=open&port=1..1024",
			"nmap://10.0.0.5/services?product~=nginx",
		},
	}
}

// ResolveStructure summarises the scanned host.
func (a *Adapter) ResolveStructure(ctx context.Context, loc domain.Locator) (domain.AdapterResult, error) {
	host, err := a.scanHost(ctx, loc.Resource)
	if err != nil {
		return domain.AdapterResult{}, err
	}
	return domain.SingleResult(hostSummary(loc.Resource, a.ports, host)), nil
}

// ResolveElement lists ports or open services.
func (a *Adapter) ResolveElement(ctx context.Context, loc domain.Locator, name string) (*domain.AdapterResult, error) {
	if name != ElementPorts && name != ElementServices {
		return nil, nil
	}

	host, err := a.scanHost(ctx, loc.Resource)
	if err != nil {
		return nil, err
	}

	var items []*domain.Object
	if host != nil {
		for _, p := range host.Ports {
			if name == ElementPorts {
				items = append(items, portItem(p))
			} else if p.State.State == "open" {
				items = append(items, serviceItem(p))
			}
		}
	}
	result := domain.SequenceResult(items)
	return &result, nil
}

// ListAvailableElements returns the fixed element set.
func (a *Adapter) ListAvailableElements(_ context.Context, loc domain.Locator) ([]domain.ElementInfo, error) {
	return []domain.ElementInfo{
		{Name: ElementPorts, Description: "Every scanned port with its state", Example: Scheme + "://" + loc.Resource + "/" + ElementPorts},
		{Name: ElementServices, Description: "Open ports with detected service versions", Example: Scheme + "://" + loc.Resource + "/" + ElementServices},
	}, nil
}

// scanHost returns the scanned host, or nil when nmap reported none up.
func (a *Adapter) scanHost(ctx context.Context, target string) (*nmap.Host, error) {
	if target == "" {
		return nil, fmt.Errorf("%w: nmap locator needs a host", domain.ErrInvalidInput)
	}
	if strings.HasPrefix(target, "-") {
		return nil, fmt.Errorf("%w: invalid nmap target %q", domain.ErrInvalidInput, target)
	}

	run, err := a.scan(ctx, target, a.ports)
	if err != nil {
		return nil, err
	}
	if run == nil || len(run.Hosts) == 0 {
		return nil, nil
	}
	return &run.Hosts[0], nil
}

func runScan(ctx context.Context, target, ports string) (*nmap.Run, error) {
	opts := []nmap.Option{
		nmap.WithTargets(target),
		nmap.WithServiceInfo(),
	}
	if ports != "" {
		opts = append(opts, nmap.WithPorts(ports))
	}

	scanner, err := nmap.NewScanner(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating nmap scanner: %w", err)
	}

	run, warnings, err := scanner.Run()
	if warnings != nil {
		for _, w := range *warnings {
			logger.Warn("nmap: %s", w)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("nmap scan of %s: %w", target, err)
	}
	return run, nil
}

func hostSummary(target, ports string, host *nmap.Host) *domain.Object {
	obj := domain.NewObject().Set("host", target)
	if host == nil {
		return obj.
			Set("status", "down").
			Set("scannedPorts", ports).
			Set("openPorts", 0)
	}

	addresses := make([]any, 0, len(host.Addresses))
	for _, addr := range host.Addresses {
		addresses = append(addresses, addr.Addr)
	}
	hostnames := make([]any, 0, len(host.Hostnames))
	for _, h := range host.Hostnames {
		hostnames = append(hostnames, h.Name)
	}

	open := 0
	var openList []any
	for _, p := range host.Ports {
		if p.State.State == "open" {
			open++
			openList = append(openList, int(p.ID))
		}
	}
	if openList == nil {
		openList = []any{}
	}

	return obj.
		Set("status", host.Status.State).
		Set("addresses", addresses).
		Set("hostnames", hostnames).
		Set("scannedPorts", ports).
		Set("openPorts", open).
		Set("open", openList)
}

func portItem(p nmap.Port) *domain.Object {
	return domain.NewObject().
		Set("port", int(p.ID)).
		Set("protocol", p.Protocol).
		Set("state", p.State.State).
		Set("reason", p.State.Reason).
		Set("service", p.Service.Name)
}

func serviceItem(p nmap.Port) *domain.Object {
	return domain.NewObject().
		Set("port", int(p.ID)).
		Set("protocol", p.Protocol).
		Set("service", p.Service.Name).
		Set("product", p.Service.Product).
		Set("version", p.Service.Version).
		Set("extraInfo", p.Service.ExtraInfo)
}
