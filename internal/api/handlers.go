package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/gabrieli/tamhui/internal/apperr"
	"github.com/gabrieli/tamhui/internal/family"
	"github.com/gabrieli/tamhui/internal/report"
	"github.com/gabrieli/tamhui/internal/schema"
	"github.com/gabrieli/tamhui/internal/store"
)

// Handler holds API route handlers.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// pathName extracts a URL parameter, unescaping encoded characters
// (family names routinely contain spaces).
func pathName(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// writeError maps a domain error to its structured result. Unrecognized
// errors surface as opaque 500s and are logged here, once.
func writeError(w http.ResponseWriter, err error) {
	res := apperr.ResultOf(err)
	if res.Status == http.StatusInternalServerError {
		slog.Error("request failed", slog.String("error", err.Error()))
	}
	writeJSON(w, res.Status, res)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// CountFamilies handles GET /api/families/count.
func (h *Handler) CountFamilies(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.CountFamilies()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": n})
}

// SearchFamilies handles GET /api/families?q=&by=.
// An empty q returns every family.
func (h *Handler) SearchFamilies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records, err := h.svc.SearchFamilies(q.Get("q"), schema.Category(q.Get("by")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"families": records})
}

// AddFamily handles POST /api/families. The body is the record itself.
func (h *Handler) AddFamily(w http.ResponseWriter, r *http.Request) {
	var rec store.Record
	if !decodeBody(w, r, &rec) {
		return
	}
	if err := h.svc.AddFamily(rec); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// AddFamilies handles POST /api/families/batch.
func (h *Handler) AddFamilies(w http.ResponseWriter, r *http.Request) {
	var req AddFamiliesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	records := make([]store.Record, len(req.Records))
	for i, rec := range req.Records {
		records[i] = store.Record(rec)
	}
	if err := h.svc.AddFamilies(records); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// UpdateFamily handles PUT /api/families/{name}. The body holds only the
// fields to change.
func (h *Handler) UpdateFamily(w http.ResponseWriter, r *http.Request) {
	var fields store.Record
	if !decodeBody(w, r, &fields) {
		return
	}
	if err := h.svc.UpdateFamily(pathName(r, "name"), fields); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveFamily handles DELETE /api/families/{name}?exit_date=.
func (h *Handler) RemoveFamily(w http.ResponseWriter, r *http.Request) {
	exitDate := r.URL.Query().Get("exit_date")
	if err := h.svc.RemoveFamily(pathName(r, "name"), exitDate); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RestoreFamily handles POST /api/families/{name}/restore.
func (h *Handler) RestoreFamily(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RestoreFamily(pathName(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SearchHistory handles GET /api/history?q=&by=.
func (h *Handler) SearchHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records, err := h.svc.SearchHistory(q.Get("q"), schema.Category(q.Get("by")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"families": records})
}

// Drivers handles GET /api/drivers.
func (h *Handler) Drivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.svc.Drivers()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"drivers": drivers})
}

// DriverlessFamilies handles GET /api/drivers/driverless.
func (h *Handler) DriverlessFamilies(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.DriverlessFamilies()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"families": records})
}

// DriverFamilies handles GET /api/drivers/{name}/families.
func (h *Handler) DriverFamilies(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.DriverFamilies(pathName(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"families": records})
}

// RenameDriver handles POST /api/drivers/rename.
func (h *Handler) RenameDriver(w http.ResponseWriter, r *http.Request) {
	var req RenameDriverRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.RenameDriver(req.Old, req.New); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Managers handles GET /api/managers.
func (h *Handler) Managers(w http.ResponseWriter, r *http.Request) {
	managers, err := h.svc.Managers()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"managers": managers})
}

// ReplaceManagers handles PUT /api/managers.
func (h *Handler) ReplaceManagers(w http.ResponseWriter, r *http.Request) {
	var req ManagersRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.ReplaceManagers(req.Managers); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reports handles GET /api/reports.
func (h *Handler) Reports(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.ReportNames()
	if err != nil {
		writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": names})
}

// ReportPreparation handles GET /api/reports/preparation. It reports the
// drivers the roster does not cover, so the caller can fix the roster
// before generating.
func (h *Handler) ReportPreparation(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.svc.NoManagerDrivers()
	if err != nil {
		writeError(w, err)
		return
	}
	if drivers == nil {
		drivers = []family.DriverTally{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"drivers": drivers})
}

// GenerateReport handles POST /api/reports.
func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	var req GenerateReportRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.GenerateReport(req.Name, req.Override); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// ActivateReport handles POST /api/reports/{name}/activate.
func (h *Handler) ActivateReport(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ActivateReport(pathName(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ActiveReport handles GET /api/reports/active.
func (h *Handler) ActiveReport(w http.ResponseWriter, r *http.Request) {
	name, err := h.svc.ActiveReportName()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"name": name})
}

// SearchReceipts handles GET /api/receipts?q=&by= against the active report.
func (h *Handler) SearchReceipts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records, err := h.svc.SearchReceipts(q.Get("q"), schema.Category(q.Get("by")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"receipts": records})
}

// FamilyReceipt handles GET /api/receipts/{name}.
func (h *Handler) FamilyReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.svc.FamilyReceipt(pathName(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// UpdateFamilyReceipt handles PUT /api/receipts/{name}.
func (h *Handler) UpdateFamilyReceipt(w http.ResponseWriter, r *http.Request) {
	var req ReceiptUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	upd := report.ReceiptUpdate{Date: req.Date, Status: req.Status}
	if err := h.svc.UpdateFamilyReceipt(pathName(r, "name"), upd); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DriverReceipts handles GET /api/receipts/drivers/{name}.
func (h *Handler) DriverReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := h.svc.DriverReceipts(pathName(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	if receipts == nil {
		receipts = []report.NamedReceipt{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"receipts": receipts})
}

// UpdateDriverReceipts handles PUT /api/receipts/drivers.
func (h *Handler) UpdateDriverReceipts(w http.ResponseWriter, r *http.Request) {
	var req DriverReceiptsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.UpdateDriverReceipts(req.updates()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CompletionFamilies handles GET /api/receipts/completion.
func (h *Handler) CompletionFamilies(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.CompletionFamilies()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"families": records})
}

// LateAddFamilies handles POST /api/receipts/families.
func (h *Handler) LateAddFamilies(w http.ResponseWriter, r *http.Request) {
	var req LateFamiliesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.LateAddFamilies(req.Names); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// InitHoliday handles POST /api/holidays.
func (h *Handler) InitHoliday(w http.ResponseWriter, r *http.Request) {
	var req HolidayRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	path, err := h.svc.InitHoliday(req.Name, req.Selected)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"path": path})
}
