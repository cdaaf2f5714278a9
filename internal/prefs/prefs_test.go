package prefs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolderDefaults(t *testing.T) {
	h := New(Theme{}, nil)
	assert.Equal(t, Theme{}, h.Theme())

	require.NoError(t, h.SetDarkMode(true))
	require.NoError(t, h.SetDynamicColor(true))
	assert.Equal(t, Theme{DarkMode: true, DynamicColor: true}, h.Theme())
}

func TestHolderSavesEveryChange(t *testing.T) {
	var saved []Theme
	h := New(Theme{}, SaverFunc(func(th Theme) error {
		saved = append(saved, th)
		return nil
	}))

	require.NoError(t, h.SetDarkMode(true))
	require.NoError(t, h.SetDarkMode(false))

	assert.Equal(t, []Theme{{DarkMode: true}, {DarkMode: false}}, saved)
}

func TestHolderSaveFailureKeepsValue(t *testing.T) {
	boom := errors.New("disk full")
	h := New(Theme{}, SaverFunc(func(Theme) error { return boom }))

	err := h.SetDarkMode(true)
	assert.ErrorIs(t, err, boom)
	assert.True(t, h.Theme().DarkMode)
}

func TestHolderObserve(t *testing.T) {
	h := New(Theme{DynamicColor: true}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := h.Observe(ctx)
	next := func() Theme {
		select {
		case th := <-ch:
			return th
		case <-time.After(time.Second):
			t.Fatal("timed out")
			return Theme{}
		}
	}

	assert.Equal(t, Theme{DynamicColor: true}, next())
	require.NoError(t, h.SetDarkMode(true))
	assert.Equal(t, Theme{DarkMode: true, DynamicColor: true}, next())
}
