package services

import (
	"context"
	"fmt"
	"time"

	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/deck"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/models"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/storage"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/structures"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/textcheck"
)

type DeckServiceInterface interface {
	// BuildDeck composes the serving order for one session.
	BuildDeck(ctx context.Context, req *models.DeckRequest) ([]models.DeckItem, error)
	// ReviewQueue lists auto-hidden features awaiting an admin decision.
	ReviewQueue(ctx context.Context) ([]models.CommunityFeature, error)
	// Greenlight records the terminal admin override on a feature.
	Greenlight(ctx context.Context, featureID string, approve bool) error
}

type DeckService struct {
	scheduler *deck.Scheduler
	repo      storage.FeatureRepositoryInterface
}

func NewDeckService(scheduler *deck.Scheduler, repo storage.FeatureRepositoryInterface) DeckServiceInterface {
	return &DeckService{scheduler: scheduler, repo: repo}
}

func (ds *DeckService) BuildDeck(ctx context.Context, req *models.DeckRequest) ([]models.DeckItem, error) {
	community, err := ds.repo.ListVisible(ctx)
	if err != nil {
		return nil, fmt.Errorf("list community features: %w", err)
	}

	var votedIDs []string
	rotation := 0
	if req != nil {
		votedIDs = req.VotedIDs
		rotation = req.RotationStep
	}

	return ds.scheduler.Build(OfficialCatalog(), community, votedIDs, rotation, time.Now()), nil
}

func (ds *DeckService) ReviewQueue(ctx context.Context) ([]models.CommunityFeature, error) {
	pending, err := ds.repo.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending features: %w", err)
	}
	return pending, nil
}

func (ds *DeckService) Greenlight(ctx context.Context, featureID string, approve bool) error {
	return ds.repo.SetGreenlit(ctx, featureID, approve)
}

// NewProfanityDetector builds the shared detector from the shipped
// similarity threshold.
func NewProfanityDetector(conf *structures.Config) *textcheck.ProfanityDetector {
	return textcheck.NewProfanityDetector(conf.Guard.SimilarityThreshold)
}
