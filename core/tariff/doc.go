// Package tariff turns the time-of-day periods of an electricity subscription
// into a validated 24 hour partition.
//
// All functions are pure. Callers own the ScheduleInput they pass in and get
// freshly derived values back; nothing in this package keeps state between
// calls, so it is safe to use from concurrent request handlers as long as each
// request builds its own input.
package tariff
