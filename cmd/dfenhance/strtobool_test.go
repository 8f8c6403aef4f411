package main

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrToBool(t *testing.T) {
	for _, s := range []string{"y", "YES", "t", "True", "on", "1"} {
		b := strToBool(false)
		require.NoError(t, b.Set(s), s)
		assert.True(t, bool(b), s)
	}
	for _, s := range []string{"n", "No", "f", "FALSE", "off", "0"} {
		b := strToBool(true)
		require.NoError(t, b.Set(s), s)
		assert.False(t, bool(b), s)
	}

	b := strToBool(true)
	assert.Error(t, b.Set("maybe"))
	assert.True(t, bool(b))
	assert.Equal(t, "true", b.String())
}

func TestStrToBoolFlag(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	logging := strToBool(true)
	flags.VarP(&logging, "logging", "l", "")

	require.NoError(t, flags.Parse([]string{"-l", "off", "a.wav"}))
	assert.False(t, bool(logging))
	assert.Equal(t, []string{"a.wav"}, flags.Args())

	require.NoError(t, flags.Parse([]string{"--logging=yes"}))
	assert.True(t, bool(logging))

	assert.Error(t, flags.Parse([]string{"--logging", "sure"}))
}
