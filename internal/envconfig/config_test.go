package envconfig

import (
	"log/slog"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"false": slog.LevelInfo,
		"0":     slog.LevelInfo,
		"true":  slog.LevelDebug,
		"1":     slog.LevelDebug,
		"2":     slog.Level(-8),
		"'1'":   slog.LevelDebug,
	}

	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			t.Setenv("HAN_DEBUG", k)
			assert.Equal(t, v, LogLevel())
		})
	}
}

func TestBool(t *testing.T) {
	cases := map[string]bool{
		"":      false,
		"true":  true,
		"false": false,
		"1":     true,
		"0":     false,
		"yes":   true,
		" 1 ":   true,
	}

	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			t.Setenv("HAN_BOOL", k)
			assert.Equal(t, v, Bool("HAN_BOOL")())
		})
	}
}

func TestUint(t *testing.T) {
	cases := map[string]uint{
		"":    3,
		"0":   0,
		"8":   8,
		"-1":  3,
		"abc": 3,
	}

	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			t.Setenv("HAN_UINT", k)
			assert.Equal(t, v, Uint("HAN_UINT", 3)())
		})
	}
}

func TestWorkers(t *testing.T) {
	t.Setenv("HAN_NUM_THREADS", "")
	assert.Equal(t, runtime.NumCPU(), Workers())

	t.Setenv("HAN_NUM_THREADS", "3")
	assert.Equal(t, 3, Workers())
}

func TestNumParallel(t *testing.T) {
	t.Setenv("HAN_NUM_PARALLEL", "")
	assert.Equal(t, uint(1), NumParallel())

	t.Setenv("HAN_NUM_PARALLEL", "4")
	assert.Equal(t, uint(4), NumParallel())
}

func TestAsMap(t *testing.T) {
	t.Setenv("HAN_NUM_PARALLEL", "2")
	m := AsMap()
	for name, v := range m {
		assert.Equal(t, name, v.Name)
		assert.NotEmpty(t, v.Description)
	}
	assert.Equal(t, uint(2), m["HAN_NUM_PARALLEL"].Value)
	assert.Equal(t, "2", Values()["HAN_NUM_PARALLEL"])
}

func TestVar(t *testing.T) {
	t.Setenv("HAN_VAR", ` "quoted" `)
	assert.Equal(t, "quoted", Var("HAN_VAR"))
}
