//go:build property

package watcher

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestDebouncerProperties validates coalescing of change bursts
func TestDebouncerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(9876)
	parameters.MinSuccessfulTests = 30

	properties := gopter.NewProperties(parameters)

	properties.Property("a burst inside the quiet period is one batch of unique paths", prop.ForAll(
		func(changeCount int, distinct int) bool {
			d := NewDebouncer(20 * time.Millisecond)
			defer d.Stop()

			for i := 0; i < changeCount; i++ {
				d.Add(ChangeEvent{Path: fmt.Sprintf("/src/file-%d.scss", i%distinct)})
			}

			want := distinct
			if changeCount < distinct {
				want = changeCount
			}

			select {
			case batch := <-d.Batches():
				if len(batch) != want {
					return false
				}
			case <-time.After(time.Second):
				return false
			}

			select {
			case <-d.Batches():
				return false
			case <-time.After(40 * time.Millisecond):
				return true
			}
		},
		gen.IntRange(1, 50),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t)
}
