package controllers

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/identity"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/models"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/providers"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/services"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger  providers.Logger
	guard   services.GuardServiceInterface
	decks   services.DeckServiceInterface
	cache   providers.CacheProviderInterface
	metrics providers.MetricsProviderInterface
}

func NewApiController(logger providers.Logger, guard services.GuardServiceInterface, decks services.DeckServiceInterface, cache providers.CacheProviderInterface, metrics providers.MetricsProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		guard:   guard,
		decks:   decks,
		cache:   cache,
		metrics: metrics,
	}
}

type errorResponse struct {
	Reason    models.Reason `json:"reason"`
	Message   string        `json:"message"`
	Retryable bool          `json:"retryable"`
}

func statusForVerdict(v *models.Verdict) int {
	switch v.Reason {
	case models.ReasonRateLimitCooldown, models.ReasonRateLimitCap:
		return http.StatusTooManyRequests
	case models.ReasonDuplicateContent, models.ReasonDuplicateReport:
		return http.StatusConflict
	case models.ReasonFeatureNotFound:
		return http.StatusNotFound
	case models.ReasonStorageUnavailable:
		return http.StatusServiceUnavailable
	case models.ReasonProfaneContent, models.ReasonLinkSpam:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	gson, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func writeVerdict(w http.ResponseWriter, v *models.Verdict) {
	writeJSON(w, statusForVerdict(v), errorResponse{
		Reason:    v.Reason,
		Message:   v.Message,
		Retryable: v.Retryable,
	})
}

func decodeBody[T any](w http.ResponseWriter, r *http.Request) (*T, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload T
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeVerdict(w, models.Reject(models.ReasonInvalidPayload, "malformed request body"))
		return nil, false
	}
	return &payload, true
}

func (ac *ApiController) SubmitFeature(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody[models.FeatureSubmission](w, r)
	if !ok {
		return
	}

	feature, verdict := ac.guard.SubmitFeature(r.Context(), identity.FromRequest(r), payload)
	if verdict != nil {
		writeVerdict(w, verdict)
		return
	}
	if feature == nil {
		// Honeypot path looks exactly like success to the caller.
		writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
		return
	}
	writeJSON(w, http.StatusCreated, feature)
}

func (ac *ApiController) ReportFeature(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody[models.ReportRequest](w, r)
	if !ok {
		return
	}

	if verdict := ac.guard.ReportFeature(r.Context(), identity.FromRequest(r), payload); verdict != nil {
		writeVerdict(w, verdict)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reported"})
}

func (ac *ApiController) JoinWaitlist(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody[models.WaitlistRequest](w, r)
	if !ok {
		return
	}

	if verdict := ac.guard.JoinWaitlist(r.Context(), identity.FromRequest(r), payload); verdict != nil {
		writeVerdict(w, verdict)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "joined"})
}

func (ac *ApiController) GetDeck(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	step, err := strconv.Atoi(q.Get("step"))
	if err != nil {
		step = 0
	}
	var voted []string
	if raw := q.Get("voted"); raw != "" {
		voted = strings.Split(raw, ",")
	}

	cacheKey := deckCacheKey(step, voted)
	if data, ok := ac.cache.Get(cacheKey); ok {
		ac.metrics.IncCacheHits()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}
	ac.metrics.IncCacheMisses()

	items, err := ac.decks.BuildDeck(r.Context(), &models.DeckRequest{VotedIDs: voted, RotationStep: step})
	if err != nil {
		ac.logger.Errorf(providers.TypeGet, "build deck failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(items)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) GetReviewQueue(w http.ResponseWriter, r *http.Request) {
	pending, err := ac.decks.ReviewQueue(r.Context())
	if err != nil {
		ac.logger.Errorf(providers.TypeGet, "review queue failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if pending == nil {
		pending = []models.CommunityFeature{}
	}
	writeJSON(w, http.StatusOK, pending)
}

type greenlightRequest struct {
	FeatureID string `json:"feature_id"`
	Approve   bool   `json:"approve"`
}

func (ac *ApiController) Greenlight(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody[greenlightRequest](w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(payload.FeatureID) == "" {
		writeVerdict(w, models.Reject(models.ReasonInvalidPayload, "missing feature id"))
		return
	}

	err := ac.decks.Greenlight(r.Context(), payload.FeatureID, payload.Approve)
	if err == storage.ErrFeatureNotFound {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no such feature"})
		return
	}
	if err == storage.ErrGreenlitDecided {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "decision already recorded"})
		return
	}
	if err != nil {
		ac.logger.Errorf(providers.TypePost, "greenlight failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func deckCacheKey(step int, voted []string) string {
	sum := sha256.Sum256([]byte(strings.Join(voted, ",")))
	return fmt.Sprintf("deck:%d:%s", step, hex.EncodeToString(sum[:8]))
}
