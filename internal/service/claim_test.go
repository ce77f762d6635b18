package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClaimSetBasics(t *testing.T) {
	c := newClaimSet()

	assert.True(t, c.tryClaim("a"))
	assert.False(t, c.tryClaim("a"), "second claim on held id must fail")
	assert.True(t, c.held("a"))
	assert.Equal(t, 1, c.size())

	c.release("a")
	assert.False(t, c.held("a"))
	assert.True(t, c.tryClaim("a"), "released id claimable again")

	// 重复 release 无害
	c.release("a")
	c.release("a")
	assert.Equal(t, 0, c.size())
}

func TestClaimSetConcurrentSingleWinner(t *testing.T) {
	c := newClaimSet()
	const goroutines = 64

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.tryClaim("post-1") {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, c.size())
}
