package routes

import (
	"net/http"

	"github.com/Zaki007-butt/Rentify-backend/internal/handlers"
	appmw "github.com/Zaki007-butt/Rentify-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

func NewRoutes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/auth/register", handlers.RegisterHandler)
	r.Post("/auth/login", handlers.LoginHandler)

	r.Group(func(r chi.Router) {
		r.Use(appmw.Authenticated)

		r.Get("/auth/me", handlers.MeHandler)
		r.Post("/auth/change-password", handlers.ChangePasswordHandler)

		r.Get("/categories", handlers.ListCategoriesHandler)
		r.Get("/types", handlers.ListTypesHandler)
		r.Get("/properties", handlers.ListPropertiesHandler)
		r.Get("/properties/{id}", handlers.GetPropertyHandler)
		r.Get("/customers", handlers.ListCustomersHandler)
		r.Get("/customers/{id}", handlers.GetCustomerHandler)
		r.Get("/agreements", handlers.ListAgreementsHandler)
		r.Get("/agreements/{id}", handlers.GetAgreementHandler)
		r.Get("/payments", handlers.ListPaymentsHandler)
		r.Get("/bills", handlers.ListUtilityBillsHandler)

		// The back-office write surface is admin only.
		r.Group(func(r chi.Router) {
			r.Use(appmw.AdminOnly)

			r.Get("/dashboard", handlers.DashboardHandler)

			r.Post("/categories", handlers.CreateCategoryHandler)
			r.Put("/categories/{id}", handlers.UpdateCategoryHandler)
			r.Delete("/categories/{id}", handlers.DeleteCategoryHandler)
			r.Post("/types", handlers.CreateTypeHandler)
			r.Put("/types/{id}", handlers.UpdateTypeHandler)
			r.Delete("/types/{id}", handlers.DeleteTypeHandler)

			r.Post("/properties", handlers.CreatePropertyHandler)
			r.Put("/properties/{id}", handlers.UpdatePropertyHandler)
			r.Delete("/properties/{id}", handlers.DeletePropertyHandler)

			r.Post("/customers", handlers.CreateCustomerHandler)
			r.Put("/customers/{id}", handlers.UpdateCustomerHandler)
			r.Delete("/customers/{id}", handlers.DeleteCustomerHandler)

			r.Post("/agreements", handlers.CreateAgreementHandler)
			r.Put("/agreements/{id}", handlers.UpdateAgreementHandler)
			r.Patch("/agreements/{id}/status", handlers.UpdateAgreementStatusHandler)
			r.Delete("/agreements/{id}", handlers.DeleteAgreementHandler)

			r.Post("/payments", handlers.CreatePaymentHandler)
			r.Put("/payments/{id}", handlers.UpdatePaymentHandler)
			r.Patch("/payments/{id}/status", handlers.UpdatePaymentStatusHandler)
			r.Delete("/payments/{id}", handlers.DeletePaymentHandler)

			r.Post("/bills", handlers.CreateUtilityBillHandler)
			r.Put("/bills/{id}", handlers.UpdateUtilityBillHandler)
			r.Delete("/bills/{id}", handlers.DeleteUtilityBillHandler)

			r.Get("/accounts", handlers.ListAccountsHandler)
			r.Post("/accounts", handlers.CreateAccountHandler)
			r.Get("/accounts/{id}", handlers.GetAccountHandler)
			r.Put("/accounts/{id}", handlers.UpdateAccountHandler)
			r.Delete("/accounts/{id}", handlers.DeleteAccountHandler)

			r.Get("/ledgers", handlers.ListLedgersHandler)
			r.Post("/ledgers", handlers.CreateLedgerHandler)
			r.Get("/ledgers/{id}", handlers.GetLedgerHandler)
			r.Put("/ledgers/{id}", handlers.UpdateLedgerHandler)
			r.Delete("/ledgers/{id}", handlers.DeleteLedgerHandler)

			r.Get("/transactions", handlers.ListTransactionsHandler)
			r.Post("/transactions", handlers.CreateTransactionHandler)
			r.Get("/transactions/{id}", handlers.GetTransactionHandler)
		})
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}
