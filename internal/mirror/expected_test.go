package mirror

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectedSetClaimConfirmRelease(t *testing.T) {
	t.Parallel()

	s := NewExpectedSet()

	prior, collided := s.Claim("report.pdf", "https://example.com/a/report.pdf")
	assert.False(t, collided)
	assert.Empty(t, prior)

	// Second claim on the same name reports the first claimant.
	prior, collided = s.Claim("report.pdf", "https://example.com/b/report.pdf")
	assert.True(t, collided)
	assert.Equal(t, "https://example.com/a/report.pdf", prior)

	// Unconfirmed claims are invisible to reconciliation.
	assert.False(t, s.Contains("report.pdf"))

	s.Confirm("report.pdf")
	assert.True(t, s.Contains("report.pdf"))
	assert.Equal(t, 1, s.Len())
}

func TestExpectedSetReleaseKeepsConfirmed(t *testing.T) {
	t.Parallel()

	s := NewExpectedSet()
	s.Claim("a.pdf", "https://example.com/a.pdf")
	s.Confirm("a.pdf")
	s.Claim("b.pdf", "https://example.com/b.pdf")

	// Release drops only the unconfirmed claim.
	s.Release("b.pdf")
	s.Release("a.pdf")

	assert.True(t, s.Contains("a.pdf"))
	assert.False(t, s.Contains("b.pdf"))

	// A released name can be claimed again without a collision.
	_, collided := s.Claim("b.pdf", "https://example.com/other/b.pdf")
	assert.False(t, collided)
}

func TestExpectedSetConcurrentClaims(t *testing.T) {
	t.Parallel()

	s := NewExpectedSet()
	const workers = 32

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		collisions int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			source := fmt.Sprintf("https://example.com/%d/shared.pdf", i)
			if _, collided := s.Claim("shared.pdf", source); collided {
				mu.Lock()
				collisions++
				mu.Unlock()
				return
			}
			s.Confirm("shared.pdf")
		}(i)
	}
	wg.Wait()

	// Exactly one goroutine wins the name.
	assert.Equal(t, workers-1, collisions)
	require.True(t, s.Contains("shared.pdf"))
	assert.Equal(t, []string{"shared.pdf"}, s.Names())
}
