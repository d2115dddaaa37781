package api

import (
	"errors"
	"fmt"

	"github.com/gabrieli/tamhui/internal/apperr"
	"github.com/gabrieli/tamhui/internal/family"
	"github.com/gabrieli/tamhui/internal/manager"
	"github.com/gabrieli/tamhui/internal/report"
	"github.com/gabrieli/tamhui/internal/schema"
	"github.com/gabrieli/tamhui/internal/sse"
	"github.com/gabrieli/tamhui/internal/store"
)

// Paths names the data files and directories the service operates on.
type Paths struct {
	Families string
	History  string
	Managers string
	Reports  string
	Holidays string
}

// Service coordinates the workbook stores and the roster for the API layer.
// Every operation opens the files it needs fresh, mutates, saves, and closes;
// nothing is cached between requests.
type Service struct {
	paths  Paths
	broker *sse.Broker
}

// NewService creates a new API service. broker may be nil.
func NewService(paths Paths, broker *sse.Broker) *Service {
	return &Service{paths: paths, broker: broker}
}

func (s *Service) notify(kind, file string) {
	if s.broker != nil {
		s.broker.PublishChange(kind, file)
	}
}

func (s *Service) families() (*store.Store, error) {
	return store.Open(s.paths.Families, schema.Families())
}

func (s *Service) history() (*store.Store, error) {
	return store.Open(s.paths.History, schema.History())
}

func (s *Service) roster() (*manager.Roster, error) {
	return manager.Load(s.paths.Managers)
}

// CountFamilies returns the number of family records.
func (s *Service) CountFamilies() (int, error) {
	st, err := s.families()
	if err != nil {
		return 0, err
	}
	defer st.Close()
	return family.Count(st)
}

// SearchFamilies searches the families table. An empty query returns all rows.
func (s *Service) SearchFamilies(query string, by schema.Category) ([]store.Record, error) {
	st, err := s.families()
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return family.Search(st, query, by)
}

// SearchHistory searches the removed-families history table.
func (s *Service) SearchHistory(query string, by schema.Category) ([]store.Record, error) {
	st, err := s.history()
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return family.Search(st, query, by)
}

// AddFamily appends one validated family record.
func (s *Service) AddFamily(rec store.Record) error {
	st, err := s.families()
	if err != nil {
		return err
	}
	defer st.Close()
	if err := family.Add(st, rec); err != nil {
		return err
	}
	s.notify(sse.KindFamilies, s.paths.Families)
	return nil
}

// AddFamilies appends records one by one, stopping at the first failure.
// Records appended before the failure stay appended.
func (s *Service) AddFamilies(records []store.Record) error {
	st, err := s.families()
	if err != nil {
		return err
	}
	defer st.Close()
	err = family.AddMany(st, records)
	var batch *apperr.BatchError
	if err == nil || (errors.As(err, &batch) && batch.Outcome == apperr.BatchPartial) {
		s.notify(sse.KindFamilies, s.paths.Families)
	}
	return err
}

// UpdateFamily applies a partial update to the named family.
func (s *Service) UpdateFamily(key string, fields store.Record) error {
	st, err := s.families()
	if err != nil {
		return err
	}
	defer st.Close()
	if err := family.Update(st, key, fields); err != nil {
		return err
	}
	s.notify(sse.KindFamilies, s.paths.Families)
	return nil
}

// RemoveFamily moves the named family into the history table.
func (s *Service) RemoveFamily(key, exitDate string) error {
	fam, err := s.families()
	if err != nil {
		return err
	}
	defer fam.Close()
	hist, err := s.history()
	if err != nil {
		return err
	}
	defer hist.Close()
	if err := family.Remove(fam, hist, key, exitDate); err != nil {
		return err
	}
	s.notify(sse.KindFamilies, s.paths.Families)
	s.notify(sse.KindHistory, s.paths.History)
	return nil
}

// RestoreFamily moves the named family from history back to the main table.
func (s *Service) RestoreFamily(key string) error {
	fam, err := s.families()
	if err != nil {
		return err
	}
	defer fam.Close()
	hist, err := s.history()
	if err != nil {
		return err
	}
	defer hist.Close()
	if err := family.Restore(hist, fam, key); err != nil {
		return err
	}
	s.notify(sse.KindFamilies, s.paths.Families)
	s.notify(sse.KindHistory, s.paths.History)
	return nil
}

// Drivers lists every known driver name, roster and tables combined,
// first-seen order, no duplicates.
func (s *Service) Drivers() ([]string, error) {
	fam, err := s.families()
	if err != nil {
		return nil, err
	}
	defer fam.Close()
	roster, err := s.roster()
	if err != nil && !errors.Is(err, apperr.ErrFileNotFound) {
		return nil, err
	}
	return family.Drivers(roster, fam)
}

// NoManagerDrivers lists the drivers assigned to families that the
// manager roster does not cover, with how many families each serves.
// Clients call this before generating a report so the roster can be
// completed first.
func (s *Service) NoManagerDrivers() ([]family.DriverTally, error) {
	fam, err := s.families()
	if err != nil {
		return nil, err
	}
	defer fam.Close()
	roster, err := s.roster()
	if err != nil && !errors.Is(err, apperr.ErrFileNotFound) {
		return nil, err
	}
	return family.NoManagerDrivers(fam, roster)
}

// DriverlessFamilies lists families with no assigned driver.
func (s *Service) DriverlessFamilies() ([]store.Record, error) {
	st, err := s.families()
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return family.Driverless(st)
}

// DriverFamilies lists the families assigned to the named driver.
func (s *Service) DriverFamilies(driver string) ([]store.Record, error) {
	st, err := s.families()
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return family.DriverFamilies(st, driver)
}

// RenameDriver renames a driver across the families table, the history
// table and the manager roster. Partial success is not rolled back.
func (s *Service) RenameDriver(oldName, newName string) error {
	fam, err := s.families()
	if err != nil {
		return err
	}
	defer fam.Close()
	hist, err := s.history()
	if err != nil {
		return err
	}
	defer hist.Close()
	roster, err := s.roster()
	if err != nil && !errors.Is(err, apperr.ErrFileNotFound) {
		return err
	}
	if err := family.RenameDriver([]*store.Store{fam, hist}, roster, oldName, newName); err != nil {
		return err
	}
	s.notify(sse.KindFamilies, s.paths.Families)
	s.notify(sse.KindHistory, s.paths.History)
	s.notify(sse.KindManagers, s.paths.Managers)
	return nil
}

// Managers returns the roster document.
func (s *Service) Managers() ([]manager.Manager, error) {
	roster, err := s.roster()
	if err != nil {
		if errors.Is(err, apperr.ErrFileNotFound) {
			return []manager.Manager{}, nil
		}
		return nil, err
	}
	return roster.Managers, nil
}

// ReplaceManagers rewrites the whole roster document.
func (s *Service) ReplaceManagers(managers []manager.Manager) error {
	roster, err := s.roster()
	if err != nil {
		if !errors.Is(err, apperr.ErrFileNotFound) {
			return err
		}
		roster = manager.New(s.paths.Managers)
	}
	roster.Managers = managers
	if err := roster.Save(); err != nil {
		return err
	}
	s.notify(sse.KindManagers, s.paths.Managers)
	return nil
}

// ReportNames lists the report collection, sorted.
func (s *Service) ReportNames() ([]string, error) {
	return report.Names(s.paths.Reports)
}

// GenerateReport builds a new receipt report from the current families table.
func (s *Service) GenerateReport(name string, override bool) error {
	fam, err := s.families()
	if err != nil {
		return err
	}
	defer fam.Close()
	records, err := family.Search(fam, "", schema.ByName)
	if err != nil {
		return err
	}
	roster, err := s.roster()
	if err != nil && !errors.Is(err, apperr.ErrFileNotFound) {
		return err
	}
	r, err := report.Generate(s.paths.Reports, name, records, roster, override)
	if err != nil {
		return err
	}
	if err := r.Close(); err != nil {
		return err
	}
	s.notify(sse.KindReport, report.Path(s.paths.Reports, name))
	return nil
}

// ActivateReport makes the named report the active one.
func (s *Service) ActivateReport(name string) error {
	if err := report.Activate(s.paths.Reports, name); err != nil {
		return err
	}
	s.notify(sse.KindReport, report.Path(s.paths.Reports, name))
	return nil
}

// ActiveReportName returns the name of the active report.
func (s *Service) ActiveReportName() (string, error) {
	r, err := report.Active(s.paths.Reports)
	if err != nil {
		return "", err
	}
	defer r.Close()
	return r.Name, nil
}

// withActive runs fn against the active report.
func (s *Service) withActive(fn func(r *report.Report) error) error {
	r, err := report.Active(s.paths.Reports)
	if err != nil {
		return err
	}
	defer r.Close()
	return fn(r)
}

// SearchReceipts searches the active report with tri-state receipt statuses.
func (s *Service) SearchReceipts(query string, by schema.Category) ([]store.Record, error) {
	var out []store.Record
	err := s.withActive(func(r *report.Report) error {
		var ferr error
		out, ferr = r.Search(query, by)
		return ferr
	})
	return out, err
}

// FamilyReceipt returns the named family's receipt from the active report.
func (s *Service) FamilyReceipt(name string) (report.Receipt, error) {
	var out report.Receipt
	err := s.withActive(func(r *report.Report) error {
		var ferr error
		out, ferr = r.FamilyReceipt(name)
		return ferr
	})
	return out, err
}

// UpdateFamilyReceipt records a receipt on the active report.
func (s *Service) UpdateFamilyReceipt(name string, upd report.ReceiptUpdate) error {
	err := s.withActive(func(r *report.Report) error {
		return r.UpdateFamilyReceipt(name, upd)
	})
	if err != nil {
		return err
	}
	s.notifyActiveReport()
	return nil
}

// DriverReceipts returns the receipts of every family assigned to the driver.
func (s *Service) DriverReceipts(driver string) ([]report.NamedReceipt, error) {
	var out []report.NamedReceipt
	err := s.withActive(func(r *report.Report) error {
		var ferr error
		out, ferr = r.DriverReceipts(driver)
		return ferr
	})
	return out, err
}

// UpdateDriverReceipts records a whole round of receipts on the active report,
// continuing through individual failures.
func (s *Service) UpdateDriverReceipts(updates []report.DriverReceiptUpdate) error {
	err := s.withActive(func(r *report.Report) error {
		return r.UpdateDriverReceipts(updates)
	})
	var batch *apperr.BatchError
	if err == nil || (errors.As(err, &batch) && batch.Outcome == apperr.BatchPartial) {
		s.notifyActiveReport()
	}
	return err
}

// CompletionFamilies lists families on the active report still awaiting a
// delivery, joined with their street from the families table.
func (s *Service) CompletionFamilies() ([]store.Record, error) {
	fam, err := s.families()
	if err != nil {
		return nil, err
	}
	defer fam.Close()
	records, err := family.Search(fam, "", schema.ByName)
	if err != nil {
		return nil, err
	}
	var out []store.Record
	err = s.withActive(func(r *report.Report) error {
		var ferr error
		out, ferr = r.CompletionFamilies(records)
		return ferr
	})
	return out, err
}

// LateAddFamilies appends families created after report generation to the
// active report, by name.
func (s *Service) LateAddFamilies(names []string) error {
	fam, err := s.families()
	if err != nil {
		return err
	}
	defer fam.Close()
	var records []store.Record
	for _, name := range names {
		found, err := family.Search(fam, name, schema.ByName)
		if err != nil {
			return err
		}
		picked := false
		for _, rec := range found {
			if rec.Key(fam.Schema()) == name {
				records = append(records, rec)
				picked = true
				break
			}
		}
		if !picked {
			return fmt.Errorf("family %q: %w", name, apperr.ErrRecordNotFound)
		}
	}
	err = s.withActive(func(r *report.Report) error {
		return r.LateAppend(records)
	})
	if err != nil {
		return err
	}
	s.notifyActiveReport()
	return nil
}

// InitHoliday duplicates the families workbook into a holiday folder and
// appends the selected families from history. Returns the new file path.
func (s *Service) InitHoliday(name string, selected []string) (string, error) {
	fam, err := s.families()
	if err != nil {
		return "", err
	}
	defer fam.Close()
	hist, err := s.history()
	if err != nil {
		return "", err
	}
	defer hist.Close()
	candidates, err := family.Search(hist, "", schema.ByName)
	if err != nil {
		return "", err
	}
	return family.InitHoliday(fam, candidates, s.paths.Holidays, name, selected)
}

func (s *Service) notifyActiveReport() {
	if r, err := report.Active(s.paths.Reports); err == nil {
		name := r.Name
		_ = r.Close()
		s.notify(sse.KindReport, report.Path(s.paths.Reports, name))
	}
}
