package api

import (
	"github.com/gabrieli/tamhui/internal/manager"
	"github.com/gabrieli/tamhui/internal/report"
)

// AddFamiliesRequest is the request body for batch family creation.
type AddFamiliesRequest struct {
	Records []map[string]any `json:"records"`
}

// RenameDriverRequest is the request body for renaming a driver everywhere.
type RenameDriverRequest struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// ManagersRequest replaces the whole roster document.
type ManagersRequest struct {
	Managers []manager.Manager `json:"managers"`
}

// GenerateReportRequest is the request body for creating a receipt report.
type GenerateReportRequest struct {
	Name     string `json:"name"`
	Override bool   `json:"override"`
}

// ReceiptUpdateRequest records a single family's receipt. Status is a
// pointer so "date only" updates leave the tri-state untouched.
type ReceiptUpdateRequest struct {
	Date   string `json:"date"`
	Status *bool  `json:"status"`
}

// DriverReceiptsRequest records a driver's whole delivery round.
type DriverReceiptsRequest struct {
	Receipts []struct {
		Name   string `json:"name"`
		Date   string `json:"date"`
		Status *bool  `json:"status"`
	} `json:"receipts"`
}

func (r DriverReceiptsRequest) updates() []report.DriverReceiptUpdate {
	out := make([]report.DriverReceiptUpdate, len(r.Receipts))
	for i, item := range r.Receipts {
		out[i] = report.DriverReceiptUpdate{
			Name: item.Name,
			ReceiptUpdate: report.ReceiptUpdate{
				Date:   item.Date,
				Status: item.Status,
			},
		}
	}
	return out
}

// LateFamiliesRequest names families to append to the active report.
type LateFamiliesRequest struct {
	Names []string `json:"names"`
}

// HolidayRequest initializes a holiday distribution file.
type HolidayRequest struct {
	Name     string   `json:"name"`
	Selected []string `json:"selected"`
}
