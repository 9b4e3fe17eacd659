// Package domain holds the types every other package shares: locators
// and filter conditions, the ordered Object every item is made of,
// adapter results and the envelopes the pipeline produces, batch records,
// settings, and the error taxonomy with its exit codes.
//
// domain imports only the standard library.
package domain
