// Package prefs holds process-wide UI preferences.
package prefs

import (
	"context"
	"log"
	"sync"

	"agenda/internal/live"
)

// Theme is the display preference set.
type Theme struct {
	DarkMode     bool
	DynamicColor bool
}

// Saver persists a theme after every change.
type Saver interface {
	SaveTheme(Theme) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(Theme) error

func (f SaverFunc) SaveTheme(t Theme) error { return f(t) }

// Holder is the single theme value for the process.
type Holder struct {
	mu    sync.Mutex
	value *live.Value[Theme]
	saver Saver
}

// New returns a holder starting at initial. saver may be nil.
func New(initial Theme, saver Saver) *Holder {
	return &Holder{value: live.New(initial), saver: saver}
}

func (h *Holder) Theme() Theme { return h.value.Get() }

// Observe streams the theme, current value first.
func (h *Holder) Observe(ctx context.Context) <-chan Theme {
	return h.value.Subscribe(ctx).C()
}

func (h *Holder) SetDarkMode(on bool) error {
	return h.update(func(t *Theme) { t.DarkMode = on })
}

func (h *Holder) SetDynamicColor(on bool) error {
	return h.update(func(t *Theme) { t.DynamicColor = on })
}

// update applies fn and publishes the result. The in-memory value changes
// even when saving fails; the save error is returned.
func (h *Holder) update(fn func(*Theme)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := h.value.Get()
	fn(&next)
	h.value.Set(next)

	if h.saver == nil {
		return nil
	}
	if err := h.saver.SaveTheme(next); err != nil {
		log.Printf("[prefs] save theme: %v", err)
		return err
	}
	return nil
}
