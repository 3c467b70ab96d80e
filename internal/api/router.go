package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/shopino/commerce-service/internal/api/handlers"
	"github.com/shopino/commerce-service/internal/api/middleware"
	"github.com/shopino/commerce-service/internal/cache"
	"github.com/shopino/commerce-service/internal/repository"
	"github.com/shopino/commerce-service/internal/service"
)

// NewRouter wires repositories, services and handlers onto the HTTP router.
func NewRouter(db *sql.DB, jwtSecret string, logger *slog.Logger) http.Handler {
	catalogRepo := repository.NewCatalogRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	transactionRepo := repository.NewTransactionRepo(db)
	promotionRepo := repository.NewPromotionRepo(db)
	configRepo := repository.NewConfigRepo(db, cache.NewConfigCache(time.Minute))
	userRepo := repository.NewUserRepo(db)

	orderSvc := service.NewOrderService(catalogRepo, orderRepo, promotionRepo, configRepo, userRepo)
	transactionSvc := service.NewTransactionService(transactionRepo, orderRepo, catalogRepo, configRepo, userRepo, logger)
	promotionSvc := service.NewPromotionService(promotionRepo)

	orderHandler := handlers.NewOrderHandler(orderSvc)
	transactionHandler := handlers.NewTransactionHandler(transactionSvc)
	promotionHandler := handlers.NewPromotionHandler(promotionSvc)
	configHandler := handlers.NewConfigHandler(configRepo)

	authn := middleware.NewAuthenticator(jwtSecret)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)

	r.Route("/order", func(r chi.Router) {
		r.Use(authn.Authenticate)
		r.Post("/", orderHandler.Create)
		r.Get("/mine", orderHandler.ListMine)
		r.With(middleware.RequireCreator).Get("/all", orderHandler.ListAll)
		r.Get("/{id}", orderHandler.Get)
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Post("/", orderHandler.CreateAdmin)
			r.Put("/{id}", orderHandler.UpdateAdmin)
		})
	})

	r.Route("/transaction", func(r chi.Router) {
		r.Use(authn.Authenticate)
		r.With(middleware.RequireCreator).Get("/", transactionHandler.List)
		r.With(middleware.RequireCreator).Get("/{id}", transactionHandler.Get)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Post("/", transactionHandler.Create)
			r.Post("/{id}/payment-process", transactionHandler.StartPaymentProcess)
			r.Patch("/{id}/submit-payment-result", transactionHandler.SubmitPaymentResult)
			r.Post("/{id}/approve-payment", transactionHandler.ApprovePayment)
			r.Post("/{id}/reject-payment", transactionHandler.RejectPayment)
		})
	})

	r.Route("/promotion", func(r chi.Router) {
		r.Use(authn.Authenticate)
		r.With(middleware.RequireCreator).Get("/", promotionHandler.List)
		r.With(middleware.RequireCreator).Get("/{id}", promotionHandler.Get)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Post("/", promotionHandler.Create)
			r.Put("/{id}", promotionHandler.Update)
			r.Delete("/{id}", promotionHandler.Delete)
		})
	})

	r.Route("/config", func(r chi.Router) {
		r.Get("/", configHandler.Latest)
		r.With(authn.Authenticate, middleware.RequireAdmin).Post("/admin", configHandler.Append)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
