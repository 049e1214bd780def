// Package envconfig reads the HAN_* environment variables.
//
// Every getter reads the environment on each call, so tests can use
// t.Setenv without resetting package state.
package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// LogLevel returns the log level for the application.
// Values are 0 or false INFO (Default), 1 or true DEBUG, 2 TRACE.
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("HAN_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

var (
	// NumThreads sets the number of CPU workers used by kernels. 0 uses every CPU.
	// Configure with HAN_NUM_THREADS.
	NumThreads = Uint("HAN_NUM_THREADS", 0)

	// NumParallel sets the number of images processed concurrently by the CLI.
	// Configure with HAN_NUM_PARALLEL.
	NumParallel = Uint("HAN_NUM_PARALLEL", 1)

	// NoProgress disables per-file progress lines on stderr.
	// Configure with HAN_NOPROGRESS.
	NoProgress = Bool("HAN_NOPROGRESS")
)

// Workers resolves NumThreads to a positive worker count.
func Workers() int {
	if n := NumThreads(); n > 0 {
		return int(n)
	}
	return runtime.NumCPU()
}

// BoolWithDefault returns a getter for a boolean variable. Unparsable
// non-empty values count as true.
func BoolWithDefault(k string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}

			return b
		}

		return defaultValue
	}
}

// Bool returns a getter for a boolean variable that defaults to false.
func Bool(k string) func() bool {
	withDefault := BoolWithDefault(k)
	return func() bool {
		return withDefault(false)
	}
}

// Uint returns a getter for an unsigned integer variable. Invalid values
// are logged and replaced by defaultValue.
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}

		return defaultValue
	}
}

// EnvVar describes one documented environment variable.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap returns every documented variable with its current value.
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"HAN_DEBUG":        {"HAN_DEBUG", LogLevel(), "Show additional debug information (e.g. HAN_DEBUG=1)"},
		"HAN_NUM_THREADS":  {"HAN_NUM_THREADS", NumThreads(), "Number of CPU workers for convolutions (default: all CPUs)"},
		"HAN_NUM_PARALLEL": {"HAN_NUM_PARALLEL", NumParallel(), "Maximum number of images processed at once"},
		"HAN_NOPROGRESS":   {"HAN_NOPROGRESS", NoProgress(), "Do not print per-file progress"},
	}
}

// Values returns the current value of every documented variable as a string.
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}

// Var returns an environment variable stripped of leading and trailing
// quotes or spaces.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
