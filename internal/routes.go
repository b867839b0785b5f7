package internal

import (
	"net/http"

	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/controllers"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/api/deck", http.HandlerFunc(apiController.GetDeck))
	routers.Post("/api/features", http.HandlerFunc(apiController.SubmitFeature))
	routers.Post("/api/reports", http.HandlerFunc(apiController.ReportFeature))
	routers.Post("/api/waitlist", http.HandlerFunc(apiController.JoinWaitlist))
	routers.Get("/api/review", http.HandlerFunc(apiController.GetReviewQueue))
	routers.Post("/api/greenlight", http.HandlerFunc(apiController.Greenlight))
	return routers
}
