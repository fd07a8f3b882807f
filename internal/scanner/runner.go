// internal/scanner/runner.go
package scanner

import (
	"context"
	"time"
)

// Outcome is what one scan cycle of Run produced.
// Exactly one of Result and Err is set.
type Outcome struct {
	Result *Result
	Err    error
}

// Run scans back to back, starting a new scan at most once per every.
// Scans never overlap; ticks missed while scanning are dropped.
// A transport error is emitted and ends the loop since the bus is gone.
func (s *Scanner) Run(ctx context.Context, every time.Duration, out chan<- Outcome) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		res, err := s.Scan(ctx)
		if ctx.Err() != nil {
			return
		}

		select {
		case out <- Outcome{Result: res, Err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
