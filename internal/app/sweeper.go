package app

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/marketpulse/internal/common"
	"github.com/bobmcallan/marketpulse/internal/interfaces"
)

// Sweeper periodically drops expired cache entries. It never fetches, so
// refresh remains lazy and driven by requests.
type Sweeper struct {
	cron    *cron.Cron
	service interfaces.MarketDataService
	logger  *common.Logger
}

// NewSweeper registers a sweep job on the given cron schedule
// (standard five-field spec or a descriptor such as "@every 10m").
func NewSweeper(schedule string, service interfaces.MarketDataService, logger *common.Logger) (*Sweeper, error) {
	s := &Sweeper{
		cron:    cron.New(cron.WithLogger(cronLogger{logger}), cron.WithChain(cron.Recover(cronLogger{logger}))),
		service: service,
		logger:  logger,
	}
	if _, err := s.cron.AddFunc(schedule, s.sweep); err != nil {
		return nil, fmt.Errorf("register cache sweep %q: %w", schedule, err)
	}
	return s, nil
}

// Start runs the schedule in the background
func (s *Sweeper) Start() {
	s.cron.Start()
	s.logger.Info().Msg("Cache sweeper: started")
}

// Stop halts the schedule and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Cache sweeper: stopped")
}

func (s *Sweeper) sweep() {
	start := time.Now()
	removed := s.service.SweepCache()
	s.logger.Debug().
		Int("removed", removed).
		Dur("elapsed", time.Since(start)).
		Msg("Cache sweeper: complete")
}

// cronLogger routes cron's internal logging through zerolog
type cronLogger struct {
	logger *common.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
