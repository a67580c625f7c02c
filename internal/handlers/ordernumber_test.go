package handlers

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"
)

var orderNumberPattern = regexp.MustCompile(`^S-(\d+)-\d{6}$`)

func TestOrderNumberFormat(t *testing.T) {
	n := orderNumber("S")
	m := orderNumberPattern.FindStringSubmatch(n)
	if m == nil {
		t.Fatalf("order number %q does not match expected shape", n)
	}

	// The middle component must be the full timestamp, not a truncated
	// slice of it, or numbers repeat across seconds.
	ts, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		t.Fatalf("timestamp component of %q not parseable: %v", n, err)
	}
	now := time.Now().UnixNano()
	if ts > now || now-ts > int64(time.Minute) {
		t.Fatalf("timestamp component %d is not close to now (%d)", ts, now)
	}
}

func TestOrderNumberUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		n := orderNumber("W")
		if _, dup := seen[n]; dup {
			t.Fatalf("duplicate order number generated: %s", n)
		}
		seen[n] = struct{}{}
		if !strings.HasPrefix(n, "W-") {
			t.Fatalf("order number %q lost its prefix", n)
		}
	}
}
