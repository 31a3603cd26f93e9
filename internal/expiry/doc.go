// Package expiry converts human-readable expiry strings such as "1 year" or
// "2 hours" into durations and absolute timestamps.
//
// Accepted forms are a bare integer number of seconds ("3600") or an integer
// magnitude followed by one unit word: year, day, hour, minute or second,
// optionally pluralized. A year is always 365 days.
package expiry
