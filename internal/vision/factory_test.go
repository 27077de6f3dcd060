package vision_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardenrich/internal/config"
	"cardenrich/internal/domain"
	"cardenrich/internal/port"
	"cardenrich/internal/vision"
	"cardenrich/mocks"
)

func registerStub(name string) *mocks.MockVisionModel {
	m := new(mocks.MockVisionModel)
	vision.RegisterProvider(name, func(cfg *config.VisionProviderConfig) (port.VisionModel, error) {
		return m, nil
	})
	return m
}

func TestNewModel_RegisteredProvider(t *testing.T) {
	stub := registerStub("test-primary")

	m, err := vision.NewModel(&config.VisionProviderConfig{Provider: "test-primary"})

	require.NoError(t, err)
	assert.Same(t, stub, m)
}

func TestNewModel_UnknownProvider(t *testing.T) {
	_, err := vision.NewModel(&config.VisionProviderConfig{Provider: "nonexistent"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownProvider))
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestNewFromConfig_PrimaryOnly(t *testing.T) {
	stub := registerStub("test-only")
	cfg := &config.VisionConfig{}
	cfg.Provider = "test-only"

	m, err := vision.NewFromConfig(cfg, nil)

	require.NoError(t, err)
	assert.Same(t, stub, m)
}

func TestNewFromConfig_WithSecondaryBuildsFallback(t *testing.T) {
	registerStub("test-a")
	registerStub("test-b")
	cfg := &config.VisionConfig{Secondary: config.VisionProviderConfig{Provider: "test-b"}}
	cfg.Provider = "test-a"

	m, err := vision.NewFromConfig(cfg, nil)

	require.NoError(t, err)
	_, ok := m.(*vision.FallbackModel)
	assert.True(t, ok)
}

func TestNewFromConfig_BadSecondary(t *testing.T) {
	registerStub("test-c")
	cfg := &config.VisionConfig{Secondary: config.VisionProviderConfig{Provider: "missing"}}
	cfg.Provider = "test-c"

	_, err := vision.NewFromConfig(cfg, nil)

	assert.True(t, errors.Is(err, domain.ErrUnknownProvider))
}
