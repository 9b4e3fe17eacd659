// Package services runs locators. QueryService parses, dispatches to the
// registered adapter and applies filter, sort, pagination, projection and
// budget in that order. BatchService fans locators out over a bounded
// worker pool. SettingsService layers environment over stored values over
// defaults.
package services
