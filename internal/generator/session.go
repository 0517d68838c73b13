// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/hashicorp/evgen"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/go-secure-stdlib/base62"
)

// sessionIDLength is the length of generated session ids. They are base62 so
// they are safe to use as file names.
const sessionIDLength = 16

// DefaultProbability is the Probability of groups built by NewGroup.
const DefaultProbability = 1.0

// Group emits events from one Template to one Writer.
type Group struct {
	Template *Template
	Writer   evgen.Writer

	// Probability that a repetition emits an event: 1 always emits, 0 never
	// does.
	Probability float64

	// Delay before each event, varied by up to DelayRandom times Delay in
	// either direction.
	Delay       time.Duration
	DelayRandom float64

	// Min and Max bound the number of repetitions per session. Max defaults
	// to Min.
	Min, Max int
}

// NewGroup returns a Group sending one event per session from t to w, with
// every repetition emitting an event.
func NewGroup(t *Template, w evgen.Writer) *Group {
	return &Group{
		Template:    t,
		Writer:      w,
		Probability: DefaultProbability,
		Min:         1,
	}
}

func (g *Group) validate() error {
	const op = "generator.(Group).validate"
	switch {
	case g.Template == nil:
		return fmt.Errorf("%s: missing template: %w", op, evgen.ErrInvalidParameter)
	case g.Writer == nil:
		return fmt.Errorf("%s: missing writer: %w", op, evgen.ErrInvalidParameter)
	case g.Min < 0 || (g.Max != 0 && g.Max < g.Min):
		return fmt.Errorf("%s: invalid repeat policy %d..%d: %w", op, g.Min, g.Max, evgen.ErrInvalidParameter)
	case g.Probability < 0 || g.Probability > 1:
		return fmt.Errorf("%s: probability %v not within [0, 1]: %w", op, g.Probability, evgen.ErrInvalidParameter)
	case g.Delay < 0 || g.DelayRandom < 0 || g.DelayRandom > 1:
		return fmt.Errorf("%s: invalid delay: %w", op, evgen.ErrInvalidParameter)
	}
	return nil
}

// Session generates sessions of events from its groups.
type Session struct {
	Groups []*Group

	// ContinueOnError logs events that fail to send and carries on. When
	// false the first failure ends the run.
	ContinueOnError bool

	Logger hclog.Logger
	Rand   *rand.Rand

	// NowFunc is a time func that returns the current time and the Session
	// will default to time.Now() if it's unset.
	NowFunc func() time.Time

	// SleepFunc waits between events. Defaults to a timer that stops early
	// when ctx is done.
	SleepFunc func(ctx context.Context, d time.Duration) error
}

// Stats counts the outcome of a run.
type Stats struct {
	Sessions int
	Sent     int
	Failed   int
}

// Run generates n sessions. It returns early when ctx is done or, unless
// ContinueOnError is set, when an event cannot be sent. Failures tolerated
// under ContinueOnError are returned together once the run is complete.
func (s *Session) Run(ctx context.Context, n int) (Stats, error) {
	const op = "generator.(Session).Run"
	var stats Stats
	for _, g := range s.Groups {
		if err := g.validate(); err != nil {
			return stats, fmt.Errorf("%s: %w", op, err)
		}
	}
	s.defaults()

	var failures *multierror.Error
	for i := 0; i < n; i++ {
		id, err := base62.Random(sessionIDLength)
		if err != nil {
			return stats, fmt.Errorf("%s: unable to generate session id: %w", op, err)
		}
		s.Logger.Debug("starting session", "session", id)
		stats.Sessions++
		for _, g := range s.Groups {
			if err := s.runGroup(ctx, id, g, &stats, &failures); err != nil {
				return stats, fmt.Errorf("%s: %w", op, err)
			}
		}
	}
	return stats, failures.ErrorOrNil()
}

// runGroup emits one session's events for g. Send failures are appended to
// failures when ContinueOnError is set and returned otherwise.
func (s *Session) runGroup(ctx context.Context, session string, g *Group, stats *Stats, failures **multierror.Error) error {
	repeat := g.Min
	if g.Max > g.Min {
		repeat += s.Rand.Intn(g.Max - g.Min + 1)
	}
	for i := 0; i < repeat; i++ {
		if err := s.SleepFunc(ctx, s.delay(g)); err != nil {
			return err
		}
		if g.Probability < 1 && s.Rand.Float64() >= g.Probability {
			continue
		}
		e := g.Template.Event(session, s.NowFunc())
		if err := g.Writer.Send(ctx, e); err != nil {
			stats.Failed++
			if !s.ContinueOnError {
				return err
			}
			s.Logger.Error("unable to send event", "session", session, "error", err)
			*failures = multierror.Append(*failures, err)
			continue
		}
		stats.Sent++
	}
	return nil
}

func (s *Session) delay(g *Group) time.Duration {
	if g.Delay == 0 || g.DelayRandom == 0 {
		return g.Delay
	}
	jitter := (s.Rand.Float64()*2 - 1) * g.DelayRandom * float64(g.Delay)
	return g.Delay + time.Duration(jitter)
}

func (s *Session) defaults() {
	if s.Logger == nil {
		s.Logger = hclog.NewNullLogger()
	}
	if s.Rand == nil {
		s.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.NowFunc == nil {
		s.NowFunc = time.Now
	}
	if s.SleepFunc == nil {
		s.SleepFunc = sleep
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
