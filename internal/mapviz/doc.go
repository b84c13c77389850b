// Package mapviz turns map entities into display data: gradient colors for
// monetary amounts, amount parsing and ranking, price-range predicates, and
// spreading of markers that share a location.
//
// Everything here is pure and synchronous. Malformed input degrades to a
// neutral default (amount 0, entity skipped, lowest gradient color) instead
// of an error, so a bad record never blanks a whole map.
package mapviz
