package share

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phaseloop/curator/internal/model"
)

func TestShareSimulatedWhenUnconfigured(t *testing.T) {
	s := New(nil, 0, "./public")

	msg, err := s.Share(model.ShareRequest{
		ImagePath: "/preview_1.png",
		Caption:   "Big release #PhaseLoopRecords",
		Platform:  "X",
	})

	require.NoError(t, err)
	assert.Contains(t, msg, "simulated")
	assert.Contains(t, msg, "X")
}

func TestShareInstagramStoryRestricted(t *testing.T) {
	s := New(nil, 0, "./public")

	_, err := s.Share(model.ShareRequest{Platform: "Instagram Story"})

	assert.ErrorIs(t, err, ErrPlatformRestricted)
}

func TestShareTelegramWithoutBotFallsBackToSimulation(t *testing.T) {
	s := New(nil, 123, "./public")

	msg, err := s.Share(model.ShareRequest{Platform: "Telegram", ImagePath: "/p.png"})

	require.NoError(t, err)
	assert.Contains(t, msg, "simulated")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 80))
	assert.Equal(t, "abc...", truncate("abcdef", 3))
}
