package payroll

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"c2ms/internal/domain/attendance"
	"c2ms/internal/domain/employees"
	"c2ms/internal/platform/period"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

var march = period.Month(2026, time.March, time.UTC)

func driver() employees.Employee {
	e := employees.Employee{
		Nama:        "Agus",
		Jabatan:     "Sopir",
		GajiPokok:   d(3000000),
		UangHarian:  d(50000),
		TarifLembur: d(25000),
	}
	e.ID = "e1"
	return e
}

func TestCalculate(t *testing.T) {
	records := []attendance.Attendance{
		{EmployeeID: "e1", Tanggal: "2026-03-02", Status: attendance.StatusPresent, OvertimeCount: 1},
		{EmployeeID: "e1", Tanggal: "2026-03-03", Status: attendance.StatusLate},
		{EmployeeID: "e1", Tanggal: "2026-03-04", Status: attendance.StatusLeave},
		{EmployeeID: "e1", Tanggal: "2026-03-05", Status: attendance.StatusAbsent},
		{EmployeeID: "e1", Tanggal: "2026-02-27", Status: attendance.StatusPresent, OvertimeCount: 3},
		{EmployeeID: "e2", Tanggal: "2026-03-02", Status: attendance.StatusPresent, OvertimeCount: 5},
	}
	in := Inputs{
		Commission: d(150000),
		Deductions: []Deduction{{Label: "Kasbon", Amount: d(200000)}, {Label: "BPJS", Amount: d(60000)}},
	}

	got := Calculate(driver(), march, records, in)

	assert.Equal(t, "2026-03", got.Period)
	assert.Equal(t, 2, got.DaysWorked)
	assert.Equal(t, 1, got.OvertimeCount)
	assert.True(t, got.AllowanceTotal.Equal(d(100000)))
	assert.True(t, got.OvertimePay.Equal(d(25000)))
	assert.True(t, got.GrossPay.Equal(d(3275000)), got.GrossPay.String())
	assert.True(t, got.TotalDeductions.Equal(d(260000)))
	assert.True(t, got.NetPay.Equal(d(3015000)))
	assert.Equal(t, "Sopir", got.Jabatan)
}

func TestCalculateWithoutAttendanceKeepsBaseSalary(t *testing.T) {
	got := Calculate(driver(), march, nil, Inputs{})
	assert.Equal(t, 0, got.DaysWorked)
	assert.True(t, got.AllowanceTotal.IsZero())
	assert.True(t, got.OvertimePay.IsZero())
	assert.True(t, got.GrossPay.Equal(d(3000000)))
	assert.True(t, got.NetPay.Equal(d(3000000)))
	assert.NotNil(t, got.Deductions)
}

func TestCalculateUnknownJabatanPassesThrough(t *testing.T) {
	e := driver()
	e.Jabatan = "Juru Mudi Cadangan"
	got := Calculate(e, march, nil, Inputs{})
	assert.Equal(t, "Juru Mudi Cadangan", got.Jabatan)
	assert.True(t, got.GrossPay.Equal(d(3000000)))
}

func TestNetEqualsGrossMinusDeductions(t *testing.T) {
	cases := []Inputs{
		{},
		{Commission: d(1)},
		{Deductions: []Deduction{{Amount: d(10)}, {Amount: d(20)}, {Amount: d(30)}}},
		{Commission: d(500000), Deductions: []Deduction{{Amount: d(4000000)}}},
	}
	records := []attendance.Attendance{
		{EmployeeID: "e1", Tanggal: "2026-03-10", Status: attendance.StatusPresent, OvertimeCount: 2},
	}
	for _, in := range cases {
		c := Calculate(driver(), march, records, in)
		sum := decimal.Zero
		for _, ded := range c.Deductions {
			sum = sum.Add(ded.Amount)
		}
		assert.True(t, c.NetPay.Equal(c.GrossPay.Sub(sum)))
	}
}

func TestTrendOldestFirstAndTruncated(t *testing.T) {
	payrolls := []MonthlyPayroll{
		{Period: "2026-03", Totals: Totals{Employees: 3, Net: d(30)}, Status: StatusDraft},
		{Period: "2026-01", Totals: Totals{Employees: 1, Net: d(10)}, Status: StatusPaid},
		{Period: "2026-02", Totals: Totals{Employees: 2, Net: d(20)}, Status: StatusPaid},
	}
	got := Trend(payrolls, 2)
	want := []TrendPoint{
		{Period: "2026-02", Employees: 2, Net: d(20), Status: StatusPaid},
		{Period: "2026-03", Employees: 3, Net: d(30), Status: StatusDraft},
	}
	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })); diff != "" {
		t.Fatalf("trend mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "2026-03", payrolls[0].Period, "input is not reordered")
	assert.Empty(t, Trend(nil, 6))
}

func TestSummarize(t *testing.T) {
	totals := Summarize([]Calculation{
		{GrossPay: d(100), TotalDeductions: d(10), NetPay: d(90)},
		{GrossPay: d(200), TotalDeductions: d(0), NetPay: d(200)},
	})
	assert.Equal(t, 2, totals.Employees)
	assert.True(t, totals.Gross.Equal(d(300)))
	assert.True(t, totals.Net.Equal(d(290)))
}
