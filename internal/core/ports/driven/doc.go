// Package driven holds the interfaces the query engine calls out through.
// Connectors and config stores implement them; services only see these
// types.
//
// Every scheme provides an Adapter, looked up through an AdapterRegistry.
// An adapter may also implement OptionsProvider for per-field comparison
// options, FilterResolver for extension operators, and LocatorNormalizer
// when its locators need rewriting before dispatch. TokenProvider is
// consumed by adapters that call authenticated APIs. ConfigStore persists
// settings.
//
// This package imports domain and nothing else from internal/.
package driven
