package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/models"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/storage"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/testutil"
)

type mockGuardService struct {
	feature *models.CommunityFeature
	verdict *models.Verdict
	calls   int
}

func (m *mockGuardService) SubmitFeature(_ context.Context, _ models.ClientIdentity, _ *models.FeatureSubmission) (*models.CommunityFeature, *models.Verdict) {
	m.calls++
	return m.feature, m.verdict
}

func (m *mockGuardService) ReportFeature(_ context.Context, _ models.ClientIdentity, _ *models.ReportRequest) *models.Verdict {
	m.calls++
	return m.verdict
}

func (m *mockGuardService) JoinWaitlist(_ context.Context, _ models.ClientIdentity, _ *models.WaitlistRequest) *models.Verdict {
	m.calls++
	return m.verdict
}

type mockDeckService struct {
	items         []models.DeckItem
	pending       []models.CommunityFeature
	err           error
	greenlightErr error
	buildCalls    int
}

func (m *mockDeckService) BuildDeck(_ context.Context, _ *models.DeckRequest) ([]models.DeckItem, error) {
	m.buildCalls++
	return m.items, m.err
}

func (m *mockDeckService) ReviewQueue(_ context.Context) ([]models.CommunityFeature, error) {
	return m.pending, m.err
}

func (m *mockDeckService) Greenlight(_ context.Context, _ string, _ bool) error {
	return m.greenlightErr
}

func newTestController(guard *mockGuardService, decks *mockDeckService) (*ApiController, *testutil.MockCache, *testutil.MockMetrics) {
	cache := testutil.NewMockCache()
	metrics := testutil.NewMockMetrics()
	ac := NewApiController(&testutil.MockLogger{}, guard, decks, cache, metrics)
	return ac, cache, metrics
}

func TestSubmitFeature_Created(t *testing.T) {
	guard := &mockGuardService{feature: &models.CommunityFeature{ID: "f-1", Name: "Idea"}}
	ac, _, _ := newTestController(guard, &mockDeckService{})

	r := httptest.NewRequest("POST", "/api/features", strings.NewReader(`{"name":"Idea","elapsed_ms":3000}`))
	w := httptest.NewRecorder()
	ac.SubmitFeature(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var got models.CommunityFeature
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "f-1", got.ID)
}

func TestSubmitFeature_HoneypotLooksLikeSuccess(t *testing.T) {
	ac, _, _ := newTestController(&mockGuardService{}, &mockDeckService{})

	r := httptest.NewRequest("POST", "/api/features", strings.NewReader(`{"name":"Idea","website":"spam"}`))
	w := httptest.NewRecorder()
	ac.SubmitFeature(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"status":"created"}`, w.Body.String())
}

func TestSubmitFeature_MalformedBody(t *testing.T) {
	guard := &mockGuardService{}
	ac, _, _ := newTestController(guard, &mockDeckService{})

	r := httptest.NewRequest("POST", "/api/features", strings.NewReader(`{not json`))
	w := httptest.NewRecorder()
	ac.SubmitFeature(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, guard.calls)
}

func TestVerdictStatusMapping(t *testing.T) {
	cases := []struct {
		verdict *models.Verdict
		status  int
	}{
		{models.Reject(models.ReasonRateLimitCooldown, "wait"), http.StatusTooManyRequests},
		{models.Reject(models.ReasonRateLimitCap, "cap"), http.StatusTooManyRequests},
		{models.Reject(models.ReasonDuplicateContent, "dup"), http.StatusConflict},
		{models.Reject(models.ReasonDuplicateReport, "dup"), http.StatusConflict},
		{models.Reject(models.ReasonFeatureNotFound, "gone"), http.StatusNotFound},
		{models.RejectRetryable(models.ReasonStorageUnavailable, "down"), http.StatusServiceUnavailable},
		{models.Reject(models.ReasonProfaneContent, "no"), http.StatusForbidden},
		{models.Reject(models.ReasonLinkSpam, "no"), http.StatusForbidden},
		{models.Reject(models.ReasonTooFast, "slow down"), http.StatusBadRequest},
		{models.Reject(models.ReasonInvalidPayload, "bad"), http.StatusBadRequest},
	}

	for _, tc := range cases {
		ac, _, _ := newTestController(&mockGuardService{verdict: tc.verdict}, &mockDeckService{})

		r := httptest.NewRequest("POST", "/api/features", strings.NewReader(`{"name":"x"}`))
		w := httptest.NewRecorder()
		ac.SubmitFeature(w, r)

		assert.Equal(t, tc.status, w.Code, "reason %s", tc.verdict.Reason)

		var resp errorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, tc.verdict.Reason, resp.Reason)
		assert.Equal(t, tc.verdict.Retryable, resp.Retryable)
	}
}

func TestReportFeature_OK(t *testing.T) {
	ac, _, _ := newTestController(&mockGuardService{}, &mockDeckService{})

	r := httptest.NewRequest("POST", "/api/reports", strings.NewReader(`{"feature_id":"f-1"}`))
	w := httptest.NewRecorder()
	ac.ReportFeature(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"reported"}`, w.Body.String())
}

func TestJoinWaitlist_Created(t *testing.T) {
	ac, _, _ := newTestController(&mockGuardService{}, &mockDeckService{})

	r := httptest.NewRequest("POST", "/api/waitlist", strings.NewReader(`{"email":"a@example.com","elapsed_ms":3000}`))
	w := httptest.NewRecorder()
	ac.JoinWaitlist(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"status":"joined"}`, w.Body.String())
}

func TestGetDeck_ReturnsItemsAndCaches(t *testing.T) {
	decks := &mockDeckService{items: []models.DeckItem{{ID: "off-01", Source: models.SourceOfficial}}}
	ac, cache, metrics := newTestController(&mockGuardService{}, decks)

	r := httptest.NewRequest("GET", "/api/deck?step=1&voted=a,b", nil)
	w := httptest.NewRecorder()
	ac.GetDeck(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decks.buildCalls)
	assert.Equal(t, 1, metrics.CacheMiss)
	assert.Len(t, cache.Data, 1)

	var items []models.DeckItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "off-01", items[0].ID)

	// Same query again is served from cache.
	w2 := httptest.NewRecorder()
	ac.GetDeck(w2, httptest.NewRequest("GET", "/api/deck?step=1&voted=a,b", nil))
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, 1, decks.buildCalls)
	assert.Equal(t, 1, metrics.CacheHit)
	assert.Equal(t, w.Body.String(), w2.Body.String())
}

func TestGetDeck_CacheKeyVariesWithQuery(t *testing.T) {
	decks := &mockDeckService{items: []models.DeckItem{}}
	ac, _, _ := newTestController(&mockGuardService{}, decks)

	ac.GetDeck(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/deck?step=0", nil))
	ac.GetDeck(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/deck?step=1", nil))
	ac.GetDeck(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/deck?step=1&voted=a", nil))

	assert.Equal(t, 3, decks.buildCalls)
}

func TestGetDeck_InvalidStepDefaultsToZero(t *testing.T) {
	decks := &mockDeckService{items: []models.DeckItem{}}
	ac, _, _ := newTestController(&mockGuardService{}, decks)

	w := httptest.NewRecorder()
	ac.GetDeck(w, httptest.NewRequest("GET", "/api/deck?step=banana", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetDeck_ServiceFailure(t *testing.T) {
	decks := &mockDeckService{err: errors.New("db locked")}
	ac, _, _ := newTestController(&mockGuardService{}, decks)

	w := httptest.NewRecorder()
	ac.GetDeck(w, httptest.NewRequest("GET", "/api/deck", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetReviewQueue_EmptyIsJSONArray(t *testing.T) {
	ac, _, _ := newTestController(&mockGuardService{}, &mockDeckService{})

	w := httptest.NewRecorder()
	ac.GetReviewQueue(w, httptest.NewRequest("GET", "/api/review", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestGreenlight_Recorded(t *testing.T) {
	ac, _, _ := newTestController(&mockGuardService{}, &mockDeckService{})

	r := httptest.NewRequest("POST", "/api/greenlight", strings.NewReader(`{"feature_id":"f-1","approve":true}`))
	w := httptest.NewRecorder()
	ac.Greenlight(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"recorded"}`, w.Body.String())
}

func TestGreenlight_AlreadyDecided(t *testing.T) {
	decks := &mockDeckService{greenlightErr: storage.ErrGreenlitDecided}
	ac, _, _ := newTestController(&mockGuardService{}, decks)

	r := httptest.NewRequest("POST", "/api/greenlight", strings.NewReader(`{"feature_id":"f-1","approve":false}`))
	w := httptest.NewRecorder()
	ac.Greenlight(w, r)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGreenlight_UnknownFeature(t *testing.T) {
	decks := &mockDeckService{greenlightErr: storage.ErrFeatureNotFound}
	ac, _, _ := newTestController(&mockGuardService{}, decks)

	r := httptest.NewRequest("POST", "/api/greenlight", strings.NewReader(`{"feature_id":"nope","approve":true}`))
	w := httptest.NewRecorder()
	ac.Greenlight(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGreenlight_MissingFeatureID(t *testing.T) {
	ac, _, _ := newTestController(&mockGuardService{}, &mockDeckService{})

	r := httptest.NewRequest("POST", "/api/greenlight", strings.NewReader(`{"approve":true}`))
	w := httptest.NewRecorder()
	ac.Greenlight(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeckCacheKey_DistinguishesVotedSets(t *testing.T) {
	assert.NotEqual(t, deckCacheKey(0, []string{"a"}), deckCacheKey(0, []string{"b"}))
	assert.NotEqual(t, deckCacheKey(0, nil), deckCacheKey(1, nil))
	assert.Equal(t, deckCacheKey(2, []string{"a", "b"}), deckCacheKey(2, []string{"a", "b"}))
}
