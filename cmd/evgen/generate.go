// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/evgen"
	"github.com/hashicorp/evgen/internal/generator"
	"github.com/hashicorp/evgen/internal/sink"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// reopener is implemented by writers whose file can be reopened after log
// rotation.
type reopener interface {
	Reopen() error
}

func newGenerateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"timeseries"},
		Short:   "Generate temperature time series sessions",
		Long: `Generate sessions of temperature readings between 18 and 34 degrees and
send every event to the configured sink. Each session gets a random
SessionId; each event carries a TimeStamp.

Sending SIGHUP reopens the output file of the file sink.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runGenerate(ctx, v, newLogger(v, cmd.ErrOrStderr()))
		},
	}

	flags := cmd.Flags()
	flags.Int("sessions", 1, "number of sessions to generate")
	flags.Int("min", 10, "minimum events per session")
	flags.Int("max", 10, "maximum events per session")
	flags.Duration("delay", time.Second, "delay between events")
	flags.Float64("delay-random", 0.5, "random variation of the delay, as a fraction of it")
	flags.Float64("probability", generator.DefaultProbability, "probability that each repetition emits an event, 0 never and 1 always")
	flags.Bool("continue-on-error", false, "log events that cannot be sent and carry on")
	flags.Int64("seed", 0, "random seed, 0 picks one from the clock")
	for _, name := range []string{"sessions", "min", "max", "delay", "delay-random", "probability", "continue-on-error", "seed"} {
		_ = v.BindPFlag("generate."+name, flags.Lookup(name))
	}
	return cmd
}

func runGenerate(ctx context.Context, v *viper.Viper, logger hclog.Logger) (retErr error) {
	c, err := sinkConfig(v)
	if err != nil {
		return err
	}
	w, err := sink.New(c, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Close(); err != nil {
			logger.Error("unable to close sink", "error", err)
			if retErr == nil {
				retErr = err
			}
		}
	}()

	if r, ok := w.(reopener); ok {
		stopReopen := reopenOnHangup(r, logger)
		defer stopReopen()
	}

	seed := v.GetInt64("generate.seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(seed))
	g := generator.NewGroup(generator.TemperatureTemplate(rnd), w)
	g.Probability = v.GetFloat64("generate.probability")
	g.Delay = v.GetDuration("generate.delay")
	g.DelayRandom = v.GetFloat64("generate.delay-random")
	g.Min = v.GetInt("generate.min")
	g.Max = v.GetInt("generate.max")
	s := &generator.Session{
		Groups:          []*generator.Group{g},
		ContinueOnError: v.GetBool("generate.continue-on-error"),
		Logger:          logger,
		Rand:            rnd,
	}
	stats, err := s.Run(ctx, v.GetInt("generate.sessions"))
	logger.Info("generation finished", "sessions", stats.Sessions, "sent", stats.Sent, "failed", stats.Failed)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	return nil
}

// reopenOnHangup reopens r on every SIGHUP until the returned func is called.
func reopenOnHangup(r reopener, logger hclog.Logger) func() {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-hup:
				if err := r.Reopen(); err != nil {
					logger.Error("unable to reopen sink", "error", err)
					continue
				}
				logger.Info("reopened sink")
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(hup)
		close(done)
	}
}

var _ reopener = &evgen.FileWriter{}
