package parity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ludo-technologies/mvnparity/domain"
)

// ErrParityMismatch is matched by every *MismatchError
var ErrParityMismatch = errors.New("parser results differ")

// MismatchError aggregates every discrepancy of a failed verification
type MismatchError struct {
	Report *domain.ParityReport
}

// Error implements the error interface
func (e *MismatchError) Error() string {
	if e.Report == nil || len(e.Report.Discrepancies) == 0 {
		return "no discrepancies"
	}
	if len(e.Report.Discrepancies) == 1 {
		return e.Report.Discrepancies[0].String()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d discrepancies found:\n", len(e.Report.Discrepancies)))
	for i, d := range e.Report.Discrepancies {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, d.String()))
	}
	return sb.String()
}

// Unwrap returns ErrParityMismatch for errors.Is compatibility
func (e *MismatchError) Unwrap() error {
	return ErrParityMismatch
}

// collector accumulates discrepancies in the order found. Discrepancies that
// render to the same String are exact duplicates and are kept once.
type collector struct {
	items []domain.Discrepancy
	seen  map[string]bool
}

func newCollector() *collector {
	return &collector{
		items: []domain.Discrepancy{},
		seen:  make(map[string]bool),
	}
}

func (c *collector) add(d domain.Discrepancy) {
	key := d.String()
	if c.seen[key] {
		return
	}
	c.seen[key] = true
	c.items = append(c.items, d)
}
