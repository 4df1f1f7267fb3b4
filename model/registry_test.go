package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnsupportedProvider(t *testing.T) {
	cfg := Config{Provider: "does-not-exist", Model: "some-model"}
	_, err := New(cfg)
	require.Error(t, err)
	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindConfig, kind)
	assert.Contains(t, err.Error(), "does-not-exist")
}

func TestRegisterAndNew(t *testing.T) {
	backend := NewMockBackend("fake-model")
	Register("fake-test-provider", func(cfg Config) (Backend, error) {
		return backend, nil
	})

	b, err := New(Config{Provider: "fake-test-provider", Model: "fake-model"})
	require.NoError(t, err)
	assert.Same(t, backend, b.(*MockBackend))
	assert.Contains(t, Providers(), "fake-test-provider")
}

func TestErrorClassificationHelpers(t *testing.T) {
	transient := NewError(KindRetryable, "openai", "rate limited", nil)
	terminal := NewError(KindTruncated, "openai", "too long", nil)

	assert.True(t, Retryable(transient))
	assert.False(t, Retryable(terminal))
	assert.False(t, Retryable(assert.AnError))

	kind, ok := KindOf(terminal)
	assert.True(t, ok)
	assert.Equal(t, KindTruncated, kind)
	_, ok = KindOf(assert.AnError)
	assert.False(t, ok)

	assert.Equal(t, "retryable", KindRetryable.String())
	assert.Contains(t, transient.Error(), "openai")
}
