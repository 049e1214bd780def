package parallel

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	assert.Equal(t, int64(n), counter)
}

func TestFor_Sequential(t *testing.T) {
	cfg := Config{Enabled: false}

	var counter int64
	For(100, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	assert.Equal(t, int64(100), counter)
}

func TestForRange_CoversEveryIndexOnce(t *testing.T) {
	cfg := WithWorkers(4)

	n := 37
	seen := make([]int32, n)
	var mu sync.Mutex
	chunks := 0

	ForRange(n, func(start, end int) {
		mu.Lock()
		chunks++
		mu.Unlock()
		for i := start; i < end; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
	}, cfg)

	for i, v := range seen {
		assert.Equal(t, int32(1), v, "index %d", i)
	}
	assert.LessOrEqual(t, chunks, 4)
}

func TestForRange_Empty(t *testing.T) {
	called := false
	ForRange(0, func(_, _ int) { called = true }, DefaultConfig())
	assert.False(t, called)
}

func TestWithWorkers(t *testing.T) {
	assert.False(t, WithWorkers(1).Enabled)
	assert.False(t, WithWorkers(0).Enabled)
	assert.Equal(t, 1, WithWorkers(0).NumWorkers)
	assert.True(t, WithWorkers(8).Enabled)
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 10000

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(j int) {
				atomic.AddInt64(&sum, int64(j))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		seqCfg := Config{Enabled: false}
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(j int) {
				atomic.AddInt64(&sum, int64(j))
			}, seqCfg)
		}
	})
}
