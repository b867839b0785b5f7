// Package janitor runs the periodic maintenance that request traffic
// alone cannot be trusted to trigger: prune sweeps over every rate-limit
// scope and audit archive flushes.
package janitor

import (
	"context"
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/audit"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/janitor/interfaces"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/providers"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/ratelimit"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/structures"
)

const sweepTimeout = 30 * time.Second

type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	limiter *ratelimit.Limiter
	archive audit.ArchiveInterface
	cron    *gron.Cron
	opsMu   sync.Mutex
}

func NewScheduler(config *structures.Config, logger providers.Logger, limiter *ratelimit.Limiter, archive audit.ArchiveInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:  config,
		logger:  logger,
		limiter: limiter,
		archive: archive,
	}
}

// scopeWindows ties every registered scope to its policy window.
func (s *Scheduler) scopeWindows() []ratelimit.ScopeWindow {
	g := s.config.Guard
	return []ratelimit.ScopeWindow{
		{Scope: ratelimit.ScopeSubmissionByIP, Window: g.Submission.Window},
		{Scope: ratelimit.ScopeSubmissionByFP, Window: g.Submission.Window},
		{Scope: ratelimit.ScopeReportByIP, Window: g.Report.Window},
		{Scope: ratelimit.ScopeReportByFP, Window: g.Report.Window},
		{Scope: ratelimit.ScopeWaitlistByIP, Window: g.Waitlist.Window},
		{Scope: ratelimit.ScopeWaitlistByFP, Window: g.Waitlist.Window},
		{Scope: ratelimit.ScopeDedupeFeature, Window: g.DedupeWindow},
		{Scope: ratelimit.ScopeDedupeReport, Window: g.DedupeWindow},
		{Scope: ratelimit.ScopeDedupeWaitlist, Window: g.DedupeWindow},
	}
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Janitor.CleanupInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		now := time.Now()
		for _, sw := range s.scopeWindows() {
			s.limiter.Prune(ctx, sw.Scope, sw.Window, now)
		}

		if err := s.archive.Flush(); err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while flushing audit archive: %s", err)
			return
		}
		s.logger.Debugf(providers.TypeApp, "Janitor sweep complete")
	})

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	return s.archive.Restore()
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Flushing audit archive to file...")
	err := s.archive.Flush()
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while flushing audit archive: %s", err)
		return err
	}
	return nil
}
