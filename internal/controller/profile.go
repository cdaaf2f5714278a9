package controller

import (
	"context"

	"agenda/internal/prefs"
	"agenda/internal/task"
	"agenda/internal/views"
)

// ProfileState is what the profile screen renders.
type ProfileState struct {
	Loading    bool
	Total      int
	Completed  int
	Percent    int
	ByCategory map[string]int
	// Recent counts tasks due per day, oldest first, ending today.
	Recent     []int
	RecentFrom views.Date
	Theme      prefs.Theme
	// LastExportPath is reserved for a future export; nothing writes it yet.
	LastExportPath string
}

// Profile drives the analytics and settings screen.
type Profile struct {
	opts  Options
	feed  feed
	prefs *prefs.Holder
}

func NewProfile(ctx context.Context, repo task.Repository, holder *prefs.Holder, opts Options) *Profile {
	p := &Profile{opts: opts.withDefaults(), prefs: holder}
	p.feed.start(ctx, repo)
	return p
}

func (p *Profile) Changes() <-chan struct{} { return p.feed.changed }

func (p *Profile) State() ProfileState {
	tasks, loaded := p.feed.snapshot()
	today := p.opts.today()
	return ProfileState{
		Loading:    !loaded,
		Total:      len(tasks),
		Completed:  views.CountCompleted(tasks),
		Percent:    views.CompletionPercent(tasks),
		ByCategory: views.ByCategory(tasks),
		Recent:     views.RecentCounts(tasks, today, p.opts.RecentDays, p.opts.Location),
		RecentFrom: today.AddDays(-(p.opts.RecentDays - 1)),
		Theme:      p.prefs.Theme(),
	}
}

func (p *Profile) SetDarkMode(on bool) error {
	defer p.feed.notify()
	return p.prefs.SetDarkMode(on)
}

func (p *Profile) SetDynamicColor(on bool) error {
	defer p.feed.notify()
	return p.prefs.SetDynamicColor(on)
}

func (p *Profile) Close() { p.feed.stop() }
