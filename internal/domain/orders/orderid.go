package orders

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Order identifiers look like "OR25-000001": fixed prefix, two-digit year,
// separator, six-digit zero-padded sequence. The zero-padding makes
// lexicographic order equal numeric order within a year, which is what lets
// the generator find the current maximum with a plain ORDER BY ... DESC.
const (
	orderIDPrefix   = "OR"
	orderIDSep      = "-"
	orderIDSeqWidth = 6
	orderIDMaxSeq   = 999999

	// maxIDAttempts bounds the read-max/insert retry loop. Exhausting it
	// surfaces as ErrIDExhausted.
	maxIDAttempts = 10
)

// yearPrefix returns the identifier prefix for the year of t, e.g. "OR25".
func yearPrefix(t time.Time) string {
	return orderIDPrefix + t.Format("06")
}

// formatOrderID builds the identifier for the given year prefix and
// sequence number.
func formatOrderID(prefix string, seq int) string {
	return fmt.Sprintf("%s%s%0*d", prefix, orderIDSep, orderIDSeqWidth, seq)
}

// parseSeq extracts the numeric suffix of an order identifier. It returns
// 0 and false when the suffix is missing or unparsable, in which case the
// sequence restarts at 1 (mirroring the recovery behavior for malformed
// legacy rows).
func parseSeq(orderID string) (int, bool) {
	idx := strings.LastIndex(orderID, orderIDSep)
	if idx < 0 || idx+1 >= len(orderID) {
		return 0, false
	}
	n, err := strconv.Atoi(orderID[idx+1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// nextOrderID computes the candidate identifier that follows lastID within
// the given year prefix. An empty lastID starts the year at 1. When the
// sequence would exceed six digits the year is full and the error is
// terminal, not a wrap-around.
func nextOrderID(prefix, lastID string) (string, error) {
	next := 1
	if lastID != "" {
		if seq, ok := parseSeq(lastID); ok {
			next = seq + 1
		}
	}
	if next > orderIDMaxSeq {
		return "", fmt.Errorf("%w: yearly sequence %s exceeded %d", ErrIDExhausted, prefix, orderIDMaxSeq)
	}
	return formatOrderID(prefix, next), nil
}
