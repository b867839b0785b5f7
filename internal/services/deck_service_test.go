package services

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/deck"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/models"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/storage"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/structures"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/testutil"
)

func newDeckFixture(repo *testutil.MockRepository) DeckServiceInterface {
	scheduler := deck.NewScheduler(structures.DefaultDeckConfig(), rand.New(rand.NewSource(1)))
	return NewDeckService(scheduler, repo)
}

func TestBuildDeck_ServesOfficialCatalog(t *testing.T) {
	ds := newDeckFixture(testutil.NewMockRepository())

	items, err := ds.BuildDeck(context.Background(), &models.DeckRequest{})
	require.NoError(t, err)

	officials := 0
	for _, it := range items {
		if it.Source == models.SourceOfficial {
			officials++
		}
	}
	assert.Equal(t, len(OfficialCatalog()), officials)
}

func TestBuildDeck_OnlyVisibleCommunityFeatures(t *testing.T) {
	repo := testutil.NewMockRepository()
	repo.Features["vis"] = &models.CommunityFeature{ID: "vis", Name: "Visible", CreatedAt: time.Now(), Allowed: true}
	repo.Features["hid"] = &models.CommunityFeature{ID: "hid", Name: "Hidden", CreatedAt: time.Now(), Allowed: false}
	ds := newDeckFixture(repo)

	items, err := ds.BuildDeck(context.Background(), &models.DeckRequest{})
	require.NoError(t, err)

	for _, it := range items {
		assert.NotEqual(t, "hid", it.ID)
	}
}

func TestBuildDeck_NilRequest(t *testing.T) {
	ds := newDeckFixture(testutil.NewMockRepository())

	items, err := ds.BuildDeck(context.Background(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, items)
}

func TestBuildDeck_RepositoryFailure(t *testing.T) {
	repo := testutil.NewMockRepository()
	repo.ListErr = errors.New("db locked")
	ds := newDeckFixture(repo)

	_, err := ds.BuildDeck(context.Background(), &models.DeckRequest{})
	assert.Error(t, err)
}

func TestReviewQueue_ListsHiddenUndecided(t *testing.T) {
	repo := testutil.NewMockRepository()
	repo.Features["pending"] = &models.CommunityFeature{ID: "pending", Allowed: false}
	repo.Features["ok"] = &models.CommunityFeature{ID: "ok", Allowed: true}
	ds := newDeckFixture(repo)

	queue, err := ds.ReviewQueue(context.Background())
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, "pending", queue[0].ID)
}

func TestGreenlight_TerminalDecision(t *testing.T) {
	repo := testutil.NewMockRepository()
	repo.Features["f-1"] = &models.CommunityFeature{ID: "f-1", Allowed: false}
	ds := newDeckFixture(repo)

	require.NoError(t, ds.Greenlight(context.Background(), "f-1", true))
	assert.True(t, repo.Features["f-1"].Visible())

	err := ds.Greenlight(context.Background(), "f-1", false)
	assert.ErrorIs(t, err, storage.ErrGreenlitDecided)
}

func TestGreenlight_UnknownFeature(t *testing.T) {
	ds := newDeckFixture(testutil.NewMockRepository())

	err := ds.Greenlight(context.Background(), "nope", true)
	assert.ErrorIs(t, err, storage.ErrFeatureNotFound)
}

func TestOfficialCatalog_ReturnsCopy(t *testing.T) {
	a := OfficialCatalog()
	a[0].Name = "mutated"
	assert.NotEqual(t, "mutated", OfficialCatalog()[0].Name)
}
