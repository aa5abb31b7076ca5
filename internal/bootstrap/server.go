package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Veronika2030/supperspot/api"
	"github.com/Veronika2030/supperspot/config"
	"github.com/Veronika2030/supperspot/internal/auth"
	"github.com/Veronika2030/supperspot/internal/service/experience"
	"github.com/Veronika2030/supperspot/internal/service/rating"
	"github.com/Veronika2030/supperspot/internal/service/reservation"
)

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(
	ctx context.Context,
	cfg *config.Config,
	verifier *auth.Verifier,
	experienceSvc experience.ExperienceUseCase,
	reservationSvc reservation.ReservationUseCase,
	ratingSvc rating.RatingUseCase,
) error {
	router := newRouter(verifier, experienceSvc, reservationSvc, ratingSvc)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(
	verifier *auth.Verifier,
	experienceSvc experience.ExperienceUseCase,
	reservationSvc reservation.ReservationUseCase,
	ratingSvc rating.RatingUseCase,
) *gin.Engine {
	router := gin.Default()
	authRequired := auth.Middleware(verifier)

	experiences := router.Group("/experiences")
	bookings := router.Group("/bookings", authRequired)

	api.NewExperienceHandler(experienceSvc).Register(experiences, authRequired)
	api.NewReservationHandler(reservationSvc).Register(bookings)
	api.NewRatingHandler(ratingSvc).Register(bookings, experiences)

	return router
}
