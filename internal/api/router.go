package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *Service, paths Paths, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)
	fh := NewFileHandler(paths)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Families.
	r.Get("/families", h.SearchFamilies)
	r.Post("/families", h.AddFamily)
	r.Post("/families/batch", h.AddFamilies)
	r.Get("/families/count", h.CountFamilies)
	r.Put("/families/{name}", h.UpdateFamily)
	r.Delete("/families/{name}", h.RemoveFamily)
	r.Post("/families/{name}/restore", h.RestoreFamily)

	// Removed-families history.
	r.Get("/history", h.SearchHistory)

	// Drivers.
	r.Get("/drivers", h.Drivers)
	r.Post("/drivers/rename", h.RenameDriver)
	r.Get("/drivers/driverless", h.DriverlessFamilies)
	r.Get("/drivers/{name}/families", h.DriverFamilies)

	// Manager roster.
	r.Get("/managers", h.Managers)
	r.Put("/managers", h.ReplaceManagers)

	// Report collection.
	r.Get("/reports", h.Reports)
	r.Post("/reports", h.GenerateReport)
	r.Get("/reports/active", h.ActiveReport)
	r.Get("/reports/preparation", h.ReportPreparation)
	r.Post("/reports/{name}/activate", h.ActivateReport)

	// Receipts on the active report.
	r.Get("/receipts", h.SearchReceipts)
	r.Get("/receipts/completion", h.CompletionFamilies)
	r.Post("/receipts/families", h.LateAddFamilies)
	r.Put("/receipts/drivers", h.UpdateDriverReceipts)
	r.Get("/receipts/drivers/{name}", h.DriverReceipts)
	r.Get("/receipts/{name}", h.FamilyReceipt)
	r.Put("/receipts/{name}", h.UpdateFamilyReceipt)

	// Holiday distributions.
	r.Post("/holidays", h.InitHoliday)

	// Workbook downloads.
	r.Get("/files/families", fh.Families)
	r.Get("/files/history", fh.History)
	r.Get("/files/reports/{name}", fh.Report)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
