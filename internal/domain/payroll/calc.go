package payroll

import (
	"github.com/shopspring/decimal"

	"c2ms/internal/domain/attendance"
	"c2ms/internal/domain/employees"
	"c2ms/internal/platform/money"
	"c2ms/internal/platform/period"
)

// Calculate derives an employee's pay for the period from the attendance
// records that fall inside it:
//
//	grossPay = baseSalary + dailyAllowance*daysWorked + commission + overtimePay
//	netPay   = grossPay - sum(deductions)
//
// Days worked are present or late records; records of other employees or
// outside the period are ignored. With no attendance only the base salary
// and commission remain.
func Calculate(emp employees.Employee, r period.Range, records []attendance.Attendance, in Inputs) Calculation {
	days := 0
	overtime := 0
	for _, a := range records {
		if a.EmployeeID != emp.ID || !r.ContainsDate(a.Tanggal) {
			continue
		}
		if a.Worked() {
			days++
		}
		overtime += a.OvertimeCount
	}

	allowance := emp.UangHarian.Mul(decimal.NewFromInt(int64(days)))
	overtimePay := emp.TarifLembur.Mul(decimal.NewFromInt(int64(overtime)))
	gross := money.Sum(emp.GajiPokok, allowance, in.Commission, overtimePay)

	deductions := make([]Deduction, 0, len(in.Deductions))
	totalDeductions := decimal.Zero
	for _, d := range in.Deductions {
		deductions = append(deductions, d)
		totalDeductions = totalDeductions.Add(d.Amount)
	}

	return Calculation{
		EmployeeID:      emp.ID,
		EmployeeName:    emp.Nama,
		Jabatan:         emp.Jabatan,
		Period:          r.Start.Format(period.MonthLayout),
		BaseSalary:      emp.GajiPokok,
		DailyAllowance:  emp.UangHarian,
		DaysWorked:      days,
		AllowanceTotal:  allowance,
		Commission:      in.Commission,
		OvertimeCount:   overtime,
		OvertimeRate:    emp.TarifLembur,
		OvertimePay:     overtimePay,
		Deductions:      deductions,
		GrossPay:        gross,
		TotalDeductions: totalDeductions,
		NetPay:          gross.Sub(totalDeductions),
		Rekening:        emp.Rekening,
	}
}

func Summarize(calcs []Calculation) Totals {
	t := Totals{Employees: len(calcs)}
	for _, c := range calcs {
		t.Gross = t.Gross.Add(c.GrossPay)
		t.Deductions = t.Deductions.Add(c.TotalDeductions)
		t.Net = t.Net.Add(c.NetPay)
	}
	return t
}

// Trend returns the last n payrolls oldest first.
func Trend(payrolls []MonthlyPayroll, n int) []TrendPoint {
	sorted := make([]MonthlyPayroll, len(payrolls))
	copy(sorted, payrolls)
	sortByPeriod(sorted)
	if n > 0 && len(sorted) > n {
		sorted = sorted[len(sorted)-n:]
	}
	out := make([]TrendPoint, 0, len(sorted))
	for _, p := range sorted {
		out = append(out, TrendPoint{
			Period:     p.Period,
			Employees:  p.Totals.Employees,
			Gross:      p.Totals.Gross,
			Deductions: p.Totals.Deductions,
			Net:        p.Totals.Net,
			Status:     p.Status,
		})
	}
	return out
}

func RegisterRows(calcs []Calculation) []RegisterRow {
	rows := make([]RegisterRow, 0, len(calcs))
	for _, c := range calcs {
		rows = append(rows, RegisterRow{
			EmployeeID:     c.EmployeeID,
			Nama:           c.EmployeeName,
			Jabatan:        c.Jabatan,
			DaysWorked:     c.DaysWorked,
			BaseSalary:     c.BaseSalary.StringFixed(0),
			AllowanceTotal: c.AllowanceTotal.StringFixed(0),
			Commission:     c.Commission.StringFixed(0),
			OvertimeCount:  c.OvertimeCount,
			OvertimePay:    c.OvertimePay.StringFixed(0),
			GrossPay:       c.GrossPay.StringFixed(0),
			Deductions:     c.TotalDeductions.StringFixed(0),
			NetPay:         c.NetPay.StringFixed(0),
			Rekening:       c.Rekening,
		})
	}
	return rows
}
