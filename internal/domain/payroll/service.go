package payroll

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"c2ms/internal/domain/attendance"
	"c2ms/internal/domain/employees"
	"c2ms/internal/domain/expenses"
	"c2ms/internal/platform/config"
	"c2ms/internal/platform/docstore"
	"c2ms/internal/platform/money"
	"c2ms/internal/platform/pdf"
	"c2ms/internal/platform/period"
	"c2ms/internal/requestctx"
)

type Service struct {
	docs       *docstore.Collection[MonthlyPayroll, *MonthlyPayroll]
	employees  *employees.Service
	attendance *attendance.Service
	expenses   *expenses.Service
	profile    config.Profile
	now        func() time.Time

	payMu sync.Mutex
}

func NewService(backend docstore.Backend, employeeSvc *employees.Service, attendanceSvc *attendance.Service, expenseSvc *expenses.Service, profile config.Profile) *Service {
	return &Service{
		docs:       docstore.NewCollection[MonthlyPayroll](backend, docstore.Payrolls),
		employees:  employeeSvc,
		attendance: attendanceSvc,
		expenses:   expenseSvc,
		profile:    profile,
		now:        time.Now,
	}
}

func (s *Service) Get(ctx context.Context, month string) (*MonthlyPayroll, error) {
	p, err := s.docs.Get(ctx, month)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *Service) List(ctx context.Context) ([]MonthlyPayroll, error) {
	all, err := s.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	sortByPeriod(all)
	return all, nil
}

// Generate (re)calculates every active employee for the month. Inputs
// given here replace the stored inputs of the same employees. Only drafts
// may be recalculated.
func (s *Service) Generate(ctx context.Context, month string, inputs map[string]Inputs) (*MonthlyPayroll, error) {
	r, err := period.ParseMonth(month, s.profile.Location())
	if err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, month)
	switch {
	case errors.Is(err, ErrNotFound):
		p = &MonthlyPayroll{Meta: docstore.Meta{ID: month}, Period: month, Status: StatusDraft}
	case err != nil:
		return nil, err
	case p.Status != StatusDraft:
		return nil, ErrLocked
	}
	if p.Inputs == nil {
		p.Inputs = map[string]Inputs{}
	}
	for id, in := range inputs {
		p.Inputs[id] = in
	}

	staff, err := s.employees.Active(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.attendance.List(ctx, "", &r)
	if err != nil {
		return nil, err
	}
	calcs := make([]Calculation, 0, len(staff))
	for _, emp := range staff {
		calcs = append(calcs, Calculate(emp, r, records, p.Inputs[emp.ID]))
	}
	p.Calculations = calcs
	p.Totals = Summarize(calcs)
	if err := s.docs.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Preview calculates one employee without storing anything.
func (s *Service) Preview(ctx context.Context, employeeID, month string, in Inputs) (Calculation, error) {
	r, err := period.ParseMonth(month, s.profile.Location())
	if err != nil {
		return Calculation{}, err
	}
	emp, err := s.employees.Get(ctx, employeeID)
	if err != nil {
		return Calculation{}, err
	}
	records, err := s.attendance.List(ctx, employeeID, &r)
	if err != nil {
		return Calculation{}, err
	}
	return Calculate(*emp, r, records, in), nil
}

func (s *Service) Approve(ctx context.Context, month string) (*MonthlyPayroll, error) {
	p, err := s.Get(ctx, month)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusDraft {
		return nil, ErrLocked
	}
	if len(p.Calculations) == 0 {
		return nil, ErrEmpty
	}
	now := s.now()
	p.Status = StatusApproved
	p.ApprovedAt = &now
	p.ApprovedBy = requestctx.GetActor(ctx)
	if err := s.docs.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Pay closes an approved payroll and books the net total as a gaji expense.
// Pay books the salary expense and marks the payroll paid. The expense is
// keyed by period, so a retry after a failed save reuses it.
func (s *Service) Pay(ctx context.Context, month, metode string) (*MonthlyPayroll, error) {
	s.payMu.Lock()
	defer s.payMu.Unlock()

	p, err := s.Get(ctx, month)
	if err != nil {
		return nil, err
	}
	switch p.Status {
	case StatusDraft:
		return nil, ErrNotApproved
	case StatusPaid:
		return nil, ErrLocked
	}
	now := s.now()
	exp, err := s.expenses.ForPayroll(ctx, expenses.Input{
		Tanggal:    now,
		Kategori:   expenses.KategoriGaji,
		Keterangan: fmt.Sprintf("Gaji karyawan periode %s", p.Period),
		Jumlah:     p.Totals.Net,
		Metode:     metode,
		PayrollID:  p.Period,
	})
	if err != nil {
		return nil, err
	}
	p.Status = StatusPaid
	p.PaidAt = &now
	p.ExpenseID = exp.ID
	if err := s.docs.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Trend(ctx context.Context, n int) ([]TrendPoint, error) {
	if n <= 0 {
		n = DefaultTrendPeriods
	}
	all, err := s.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	return Trend(all, n), nil
}

func (p *MonthlyPayroll) Calculation(employeeID string) (Calculation, error) {
	for _, c := range p.Calculations {
		if c.EmployeeID == employeeID {
			return c, nil
		}
	}
	return Calculation{}, ErrNoCalculation
}

// RenderPayslip writes one employee's payslip.
func (s *Service) RenderPayslip(w io.Writer, p *MonthlyPayroll, c Calculation) error {
	doc := pdf.New(s.profile, "Slip Gaji "+p.Period)
	doc.Field("Nama", c.EmployeeName)
	doc.Field("Jabatan", c.Jabatan)
	doc.Field("Hari kerja", fmt.Sprintf("%d hari", c.DaysWorked))
	doc.Field("Lembur", fmt.Sprintf("%d kali", c.OvertimeCount))
	if c.Rekening != "" {
		doc.Field("Rekening", c.Rekening)
	}
	doc.Heading("Pendapatan")
	doc.Total("Gaji pokok", money.Rupiah(c.BaseSalary), false)
	doc.Total(fmt.Sprintf("Uang harian (%d x %s)", c.DaysWorked, money.Rupiah(c.DailyAllowance)), money.Rupiah(c.AllowanceTotal), false)
	doc.Total("Komisi", money.Rupiah(c.Commission), false)
	doc.Total(fmt.Sprintf("Lembur (%d x %s)", c.OvertimeCount, money.Rupiah(c.OvertimeRate)), money.Rupiah(c.OvertimePay), false)
	doc.Total("Total bruto", money.Rupiah(c.GrossPay), true)
	doc.Heading("Potongan")
	for _, d := range c.Deductions {
		doc.Total(d.Label, money.Rupiah(d.Amount), false)
	}
	doc.Total("Total potongan", money.Rupiah(c.TotalDeductions), true)
	doc.Gap()
	doc.Total("Gaji bersih", money.Rupiah(c.NetPay), true)
	if p.Status != StatusPaid {
		doc.Note("Status payroll: " + p.Status)
	}
	return doc.WriteTo(w)
}

func sortByPeriod(items []MonthlyPayroll) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Period < items[j].Period })
}
