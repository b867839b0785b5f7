package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/audit"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/models"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/providers"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/ratelimit"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/storage"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/structures"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/textcheck"
)

const (
	actionFeature  = "feature"
	actionReport   = "report"
	actionWaitlist = "waitlist"

	defaultCategory = "general"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// GuardServiceInterface fronts every user-generated write. Each
// operation returns a nil verdict on acceptance; a non-nil verdict names
// the first stage that rejected. SubmitFeature additionally returns the
// persisted feature, or nil for the honeypot no-op path.
type GuardServiceInterface interface {
	SubmitFeature(ctx context.Context, id models.ClientIdentity, req *models.FeatureSubmission) (*models.CommunityFeature, *models.Verdict)
	ReportFeature(ctx context.Context, id models.ClientIdentity, req *models.ReportRequest) *models.Verdict
	JoinWaitlist(ctx context.Context, id models.ClientIdentity, req *models.WaitlistRequest) *models.Verdict
}

type GuardService struct {
	conf     *structures.Config
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	limiter  *ratelimit.Limiter
	detector *textcheck.ProfanityDetector
	repo     storage.FeatureRepositoryInterface
	archive  audit.ArchiveInterface
}

func NewGuardService(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, limiter *ratelimit.Limiter, detector *textcheck.ProfanityDetector, repo storage.FeatureRepositoryInterface, archive audit.ArchiveInterface) GuardServiceInterface {
	return &GuardService{
		conf:     conf,
		logger:   logger,
		metrics:  metrics,
		limiter:  limiter,
		detector: detector,
		repo:     repo,
		archive:  archive,
	}
}

func (gs *GuardService) SubmitFeature(ctx context.Context, id models.ClientIdentity, req *models.FeatureSubmission) (*models.CommunityFeature, *models.Verdict) {
	g := gs.conf.Guard
	now := time.Now()

	if req == nil {
		return nil, gs.reject(actionFeature, id.Fingerprint,
			models.Reject(models.ReasonInvalidPayload, "missing submission body"))
	}
	if req.Website != "" {
		// Honeypot tripped: pretend success, write nothing.
		gs.metrics.IncDecision(actionFeature, "honeypot")
		gs.logger.Debugf(providers.TypePost, "honeypot tripped for %s", id.Fingerprint)
		return nil, nil
	}

	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = defaultCategory
	}

	if len(name) < g.NameMinLen || len(name) > g.NameMaxLen ||
		len(description) > g.DescriptionMaxLen || len(category) > g.CategoryMaxLen {
		return nil, gs.reject(actionFeature, id.Fingerprint,
			models.Reject(models.ReasonLengthOutOfBounds, "name, description or category length is out of bounds"))
	}
	if req.ElapsedMs < g.MinElapsed.Milliseconds() {
		return nil, gs.reject(actionFeature, id.Fingerprint,
			models.Reject(models.ReasonTooFast, "submission sent too quickly"))
	}

	for _, field := range []string{name, description, category} {
		if gs.detector.IsProfane(field) {
			return nil, gs.reject(actionFeature, id.Fingerprint,
				models.Reject(models.ReasonProfaneContent, "submission contains inappropriate language"))
		}
	}
	for _, field := range []string{name, description, category} {
		if textcheck.HasLink(field) {
			return nil, gs.reject(actionFeature, id.Fingerprint,
				models.Reject(models.ReasonLinkSpam, "links are not allowed in submissions"))
		}
	}

	rateEntries, verdict := gs.limiter.CheckPair(ctx,
		ratelimit.ScopeSubmissionByIP, id.IPHash,
		ratelimit.ScopeSubmissionByFP, id.Fingerprint,
		now, g.Submission)
	if verdict != nil {
		return nil, gs.reject(actionFeature, id.Fingerprint, verdict)
	}

	dedupeKey := contentFingerprint(id.Fingerprint, name, description, category)
	dedupeEntry, verdict := gs.limiter.Check(ctx, ratelimit.ScopeDedupeFeature, dedupeKey, now, dedupePolicy(g))
	if verdict != nil {
		return nil, gs.reject(actionFeature, id.Fingerprint,
			asDuplicate(verdict, models.ReasonDuplicateContent, "you already submitted this idea recently"))
	}

	feature := &models.CommunityFeature{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Category:    strings.ToLower(category),
		CreatedAt:   now,
		Allowed:     true,
	}
	if err := gs.repo.CreateFeature(ctx, feature); err != nil {
		gs.logger.Errorf(providers.TypePost, "persist feature failed: %s", err)
		return nil, gs.reject(actionFeature, id.Fingerprint,
			models.RejectRetryable(models.ReasonStorageUnavailable, "could not save your submission, please retry"))
	}

	// Bookkeeping only after the primary write succeeded; failures are
	// swallowed inside.
	gs.limiter.CommitBestEffort(ctx, rateEntries[0], now)
	gs.limiter.CommitBestEffort(ctx, rateEntries[1], now)
	gs.limiter.CommitBestEffort(ctx, dedupeEntry, now)
	gs.amortizedPrune(ctx, now)

	gs.metrics.IncDecision(actionFeature, "accepted")
	return feature, nil
}

func (gs *GuardService) ReportFeature(ctx context.Context, id models.ClientIdentity, req *models.ReportRequest) *models.Verdict {
	g := gs.conf.Guard
	now := time.Now()

	if req == nil || strings.TrimSpace(req.FeatureID) == "" {
		return gs.reject(actionReport, id.Fingerprint,
			models.Reject(models.ReasonInvalidPayload, "missing feature id"))
	}
	if req.Website != "" {
		gs.metrics.IncDecision(actionReport, "honeypot")
		return nil
	}
	featureID := strings.TrimSpace(req.FeatureID)

	feature, err := gs.repo.GetFeature(ctx, featureID)
	if err != nil {
		gs.logger.Errorf(providers.TypePost, "load feature failed: %s", err)
		return gs.reject(actionReport, id.Fingerprint,
			models.RejectRetryable(models.ReasonStorageUnavailable, "could not process your report, please retry"))
	}
	if feature == nil {
		return gs.reject(actionReport, id.Fingerprint,
			models.Reject(models.ReasonFeatureNotFound, "this idea no longer exists"))
	}

	// One report per (fingerprint, feature) per window, so one person
	// cannot hide an item alone by repeat-reporting.
	dedupeKey := reportFingerprint(id.Fingerprint, featureID)
	dedupeEntry, verdict := gs.limiter.Check(ctx, ratelimit.ScopeDedupeReport, dedupeKey, now, dedupePolicy(g))
	if verdict != nil {
		return gs.reject(actionReport, id.Fingerprint,
			asDuplicate(verdict, models.ReasonDuplicateReport, "you already reported this idea"))
	}

	rateEntries, verdict := gs.limiter.CheckPair(ctx,
		ratelimit.ScopeReportByIP, id.IPHash,
		ratelimit.ScopeReportByFP, id.Fingerprint,
		now, g.Report)
	if verdict != nil {
		return gs.reject(actionReport, id.Fingerprint, verdict)
	}

	count, err := gs.repo.IncrementReported(ctx, featureID)
	if err != nil {
		gs.logger.Errorf(providers.TypePost, "increment reported failed: %s", err)
		return gs.reject(actionReport, id.Fingerprint,
			models.RejectRetryable(models.ReasonStorageUnavailable, "could not process your report, please retry"))
	}
	if count >= g.ReportHideThreshold && feature.Allowed {
		if err := gs.repo.SetAllowed(ctx, featureID, false); err != nil {
			gs.logger.Errorf(providers.TypePost, "auto-hide failed for %s: %s", featureID, err)
		} else {
			gs.logger.Infof(providers.TypePost, "feature %s hidden pending review after %d report(s)", featureID, count)
		}
	}

	gs.limiter.CommitBestEffort(ctx, dedupeEntry, now)
	gs.limiter.CommitBestEffort(ctx, rateEntries[0], now)
	gs.limiter.CommitBestEffort(ctx, rateEntries[1], now)
	gs.amortizedPrune(ctx, now)

	gs.metrics.IncDecision(actionReport, "accepted")
	return nil
}

func (gs *GuardService) JoinWaitlist(ctx context.Context, id models.ClientIdentity, req *models.WaitlistRequest) *models.Verdict {
	g := gs.conf.Guard
	now := time.Now()

	if req == nil {
		return gs.reject(actionWaitlist, id.Fingerprint,
			models.Reject(models.ReasonInvalidPayload, "missing signup body"))
	}
	if req.Website != "" {
		gs.metrics.IncDecision(actionWaitlist, "honeypot")
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || len(email) > g.EmailMaxLen || !emailRegex.MatchString(email) {
		return gs.reject(actionWaitlist, id.Fingerprint,
			models.Reject(models.ReasonInvalidPayload, "a valid email address is required"))
	}
	if req.ElapsedMs < g.MinElapsed.Milliseconds() {
		return gs.reject(actionWaitlist, id.Fingerprint,
			models.Reject(models.ReasonTooFast, "signup sent too quickly"))
	}

	rateEntries, verdict := gs.limiter.CheckPair(ctx,
		ratelimit.ScopeWaitlistByIP, id.IPHash,
		ratelimit.ScopeWaitlistByFP, id.Fingerprint,
		now, g.Waitlist)
	if verdict != nil {
		return gs.reject(actionWaitlist, id.Fingerprint, verdict)
	}

	dedupeKey := contentFingerprint(id.Fingerprint, email, "", "")
	dedupeEntry, verdict := gs.limiter.Check(ctx, ratelimit.ScopeDedupeWaitlist, dedupeKey, now, dedupePolicy(g))
	if verdict != nil {
		return gs.reject(actionWaitlist, id.Fingerprint,
			asDuplicate(verdict, models.ReasonDuplicateContent, "this email is already on the waitlist"))
	}

	entry := &models.WaitlistEntry{ID: uuid.NewString(), Email: email, CreatedAt: now}
	if err := gs.repo.CreateWaitlistEntry(ctx, entry); err != nil {
		gs.logger.Errorf(providers.TypePost, "persist waitlist entry failed: %s", err)
		return gs.reject(actionWaitlist, id.Fingerprint,
			models.RejectRetryable(models.ReasonStorageUnavailable, "could not save your signup, please retry"))
	}

	gs.limiter.CommitBestEffort(ctx, rateEntries[0], now)
	gs.limiter.CommitBestEffort(ctx, rateEntries[1], now)
	gs.limiter.CommitBestEffort(ctx, dedupeEntry, now)
	gs.amortizedPrune(ctx, now)

	gs.metrics.IncDecision(actionWaitlist, "accepted")
	return nil
}

// reject records a verdict to metrics and the audit archive before
// handing it back.
func (gs *GuardService) reject(action, scopeKey string, v *models.Verdict) *models.Verdict {
	gs.metrics.IncDecision(action, string(v.Reason))
	gs.archive.Record(action, v.Reason, scopeKey)
	return v
}

// amortizedPrune opportunistically sweeps the dedupe scopes on write
// traffic; the janitor covers everything on its own interval.
func (gs *GuardService) amortizedPrune(ctx context.Context, now time.Time) {
	g := gs.conf.Guard
	interval := gs.conf.Janitor.CleanupInterval
	gs.limiter.MaybePrune(ctx, ratelimit.ScopeDedupeFeature, g.DedupeWindow, interval, now)
	gs.limiter.MaybePrune(ctx, ratelimit.ScopeDedupeReport, g.DedupeWindow, interval, now)
	gs.limiter.MaybePrune(ctx, ratelimit.ScopeDedupeWaitlist, g.DedupeWindow, interval, now)
}

// dedupePolicy turns the dedupe window into a presence check: maxCount 1,
// no cooldown.
func dedupePolicy(g structures.GuardConfig) structures.LimitPolicy {
	return structures.LimitPolicy{Window: g.DedupeWindow, MaxCount: 1}
}

// asDuplicate maps a dedupe-scope rate verdict onto the duplicate
// taxonomy; store outages pass through untouched.
func asDuplicate(v *models.Verdict, reason models.Reason, message string) *models.Verdict {
	if v.Reason == models.ReasonStorageUnavailable {
		return v
	}
	return models.Reject(reason, message)
}

// contentFingerprint keys the dedupe scope: canonicalized content joined
// with the submitter fingerprint, hashed.
func contentFingerprint(fingerprint, name, description, category string) string {
	payload := strings.Join([]string{
		textcheck.Canonicalize(name),
		textcheck.Canonicalize(description),
		strings.ToLower(category),
		fingerprint,
	}, "|")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

func reportFingerprint(fingerprint, featureID string) string {
	sum := sha256.Sum256([]byte(fingerprint + "|" + featureID))
	return hex.EncodeToString(sum[:])
}
