package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	schemesURI     = "reveal://schemes"
	schemeTemplate = schemesURI + "/{scheme}"
	jsonMIME       = "application/json"
)

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         schemesURI,
		Name:        "schemes",
		Description: "Capabilities of every registered locator scheme",
		MIMEType:    jsonMIME,
	}, func(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return jsonResource(req.Params.URI, s.ports.Schemes.List())
	})

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: schemeTemplate,
		Name:        "scheme",
		Description: "Capabilities of one locator scheme",
		MIMEType:    jsonMIME,
	}, s.readScheme)
}

func (s *Server) readScheme(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	scheme := schemeFromURI(uri)
	if scheme == "" {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	caps, err := s.ports.Schemes.Describe(scheme)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	return jsonResource(uri, caps)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{URI: uri, MIMEType: jsonMIME, Text: string(data)},
	}}, nil
}

// schemeFromURI returns the {scheme} segment of reveal://schemes/{scheme},
// or "" for any other URI.
func schemeFromURI(uri string) string {
	scheme, ok := strings.CutPrefix(uri, schemesURI+"/")
	if !ok || strings.Contains(scheme, "/") {
		return ""
	}
	return scheme
}
