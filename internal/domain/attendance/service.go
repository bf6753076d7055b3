package attendance

import (
	"context"
	"errors"
	"sort"
	"time"

	"c2ms/internal/domain/employees"
	"c2ms/internal/platform/config"
	"c2ms/internal/platform/docstore"
	"c2ms/internal/platform/period"
)

var (
	ErrNotFound         = errors.New("attendance record not found")
	ErrAlreadyCheckedIn = errors.New("employee already has an open shift")
	ErrNotCheckedIn     = errors.New("employee has no open shift")
	ErrInactiveEmployee = errors.New("employee is not active")
	ErrInvalidStatus    = errors.New("invalid attendance status")
	ErrInvalidDate      = errors.New("tanggal must be YYYY-MM-DD")
)

type Service struct {
	docs      *docstore.Collection[Attendance, *Attendance]
	employees *employees.Service
	profile   config.Profile
}

func NewService(backend docstore.Backend, employeeSvc *employees.Service, profile config.Profile) *Service {
	return &Service{
		docs:      docstore.NewCollection[Attendance](backend, docstore.Attendance),
		employees: employeeSvc,
		profile:   profile,
	}
}

// CheckIn opens a shift on the local day of at. The first shift of the day
// decides between present and late.
func (s *Service) CheckIn(ctx context.Context, employeeID string, at time.Time, lembur bool) (*Attendance, error) {
	emp, err := s.activeEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	at = at.In(s.profile.Location())
	tanggal := at.Format(period.DateLayout)

	a, err := s.docs.Get(ctx, DocID(employeeID, tanggal))
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		a = &Attendance{
			Meta:         docstore.Meta{ID: DocID(employeeID, tanggal)},
			EmployeeID:   employeeID,
			EmployeeName: emp.Nama,
			Tanggal:      tanggal,
			Shifts:       []Shift{},
			Status:       ArrivalStatus(at, s.profile.WorkStartOn(at)),
		}
	case err != nil:
		return nil, err
	}
	for _, shift := range a.Shifts {
		if shift.Open() {
			return nil, ErrAlreadyCheckedIn
		}
	}
	if !a.Worked() {
		a.Status = ArrivalStatus(at, s.profile.WorkStartOn(at))
	}
	a.Shifts = append(a.Shifts, Shift{CheckIn: at, Lembur: lembur})
	Summarize(a)
	if err := s.docs.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// CheckOut closes the open shift of the day, or of the previous day for
// shifts that ran past midnight.
func (s *Service) CheckOut(ctx context.Context, employeeID string, at time.Time) (*Attendance, error) {
	at = at.In(s.profile.Location())
	for _, day := range []time.Time{at, at.AddDate(0, 0, -1)} {
		a, err := s.docs.Get(ctx, DocID(employeeID, day.Format(period.DateLayout)))
		if errors.Is(err, docstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for i := range a.Shifts {
			if !a.Shifts[i].Open() {
				continue
			}
			out := at
			a.Shifts[i].CheckOut = &out
			Summarize(a)
			if err := s.docs.Save(ctx, a); err != nil {
				return nil, err
			}
			return a, nil
		}
	}
	return nil, ErrNotCheckedIn
}

// Record writes a whole day, used for leave, absence and corrections.
func (s *Service) Record(ctx context.Context, in RecordInput) (*Attendance, error) {
	if _, err := time.Parse(period.DateLayout, in.Tanggal); err != nil {
		return nil, ErrInvalidDate
	}
	if !validStatus(in.Status) {
		return nil, ErrInvalidStatus
	}
	emp, err := s.employees.Get(ctx, in.EmployeeID)
	if err != nil {
		return nil, err
	}
	id := DocID(in.EmployeeID, in.Tanggal)
	a, err := s.docs.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		a = &Attendance{Meta: docstore.Meta{ID: id}}
	} else if err != nil {
		return nil, err
	}
	a.EmployeeID = in.EmployeeID
	a.EmployeeName = emp.Nama
	a.Tanggal = in.Tanggal
	a.Status = in.Status
	a.Shifts = in.Shifts
	if a.Shifts == nil {
		a.Shifts = []Shift{}
	}
	a.Catatan = in.Catatan
	Summarize(a)
	if err := s.docs.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Attendance, error) {
	a, err := s.docs.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	return a, err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.docs.Delete(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// List returns records inside r (all when nil), newest day first.
func (s *Service) List(ctx context.Context, employeeID string, r *period.Range) ([]Attendance, error) {
	all, err := s.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Attendance, 0)
	for _, a := range all {
		if employeeID != "" && a.EmployeeID != employeeID {
			continue
		}
		if r != nil && !r.ContainsDate(a.Tanggal) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Tanggal == out[j].Tanggal {
			return out[i].EmployeeName < out[j].EmployeeName
		}
		return out[i].Tanggal > out[j].Tanggal
	})
	return out, nil
}

func (s *Service) Summary(ctx context.Context, r period.Range) ([]Summary, error) {
	records, err := s.List(ctx, "", &r)
	if err != nil {
		return nil, err
	}
	return SummarizePeriod(records), nil
}

func (s *Service) activeEmployee(ctx context.Context, id string) (*employees.Employee, error) {
	emp, err := s.employees.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if emp.Status != employees.StatusAktif {
		return nil, ErrInactiveEmployee
	}
	return emp, nil
}

func validStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}
