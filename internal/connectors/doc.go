// Package connectors holds the concrete adapters reveal ships with.
// Each sub-package serves one or more locator schemes by implementing
// driven.Adapter; Builtins constructs the full set from settings.
package connectors
