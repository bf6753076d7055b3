package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"c2ms/internal/platform/docstore"
)

type Deduction struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Inputs are the per-employee values entered for a period.
type Inputs struct {
	Commission decimal.Decimal `json:"commission"`
	Deductions []Deduction     `json:"deductions"`
}

// Calculation is one employee's pay for one period.
type Calculation struct {
	EmployeeID      string          `json:"employeeId"`
	EmployeeName    string          `json:"employeeName"`
	Jabatan         string          `json:"jabatan"`
	Period          string          `json:"period"`
	BaseSalary      decimal.Decimal `json:"baseSalary"`
	DailyAllowance  decimal.Decimal `json:"dailyAllowance"`
	DaysWorked      int             `json:"daysWorked"`
	AllowanceTotal  decimal.Decimal `json:"allowanceTotal"`
	Commission      decimal.Decimal `json:"commission"`
	OvertimeCount   int             `json:"overtimeCount"`
	OvertimeRate    decimal.Decimal `json:"overtimeRate"`
	OvertimePay     decimal.Decimal `json:"overtimePay"`
	Deductions      []Deduction     `json:"deductions"`
	GrossPay        decimal.Decimal `json:"grossPay"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	NetPay          decimal.Decimal `json:"netPay"`
	Rekening        string          `json:"rekening,omitempty"`
}

type Totals struct {
	Employees  int             `json:"employees"`
	Gross      decimal.Decimal `json:"gross"`
	Deductions decimal.Decimal `json:"deductions"`
	Net        decimal.Decimal `json:"net"`
}

// MonthlyPayroll is stored with the period (YYYY-MM) as its id.
type MonthlyPayroll struct {
	docstore.Meta
	Period       string            `json:"period"`
	Calculations []Calculation     `json:"calculations"`
	Inputs       map[string]Inputs `json:"inputs,omitempty"`
	Totals       Totals            `json:"totals"`
	Status       string            `json:"status"`
	ApprovedBy   string            `json:"approvedBy,omitempty"`
	ApprovedAt   *time.Time        `json:"approvedAt,omitempty"`
	PaidAt       *time.Time        `json:"paidAt,omitempty"`
	ExpenseID    string            `json:"expenseId,omitempty"`
}

type TrendPoint struct {
	Period     string          `json:"period"`
	Employees  int             `json:"employees"`
	Gross      decimal.Decimal `json:"gross"`
	Deductions decimal.Decimal `json:"deductions"`
	Net        decimal.Decimal `json:"net"`
	Status     string          `json:"status"`
}

type RegisterRow struct {
	EmployeeID     string `csv:"employee_id"`
	Nama           string `csv:"nama"`
	Jabatan        string `csv:"jabatan"`
	DaysWorked     int    `csv:"hari_kerja"`
	BaseSalary     string `csv:"gaji_pokok"`
	AllowanceTotal string `csv:"uang_harian"`
	Commission     string `csv:"komisi"`
	OvertimeCount  int    `csv:"lembur"`
	OvertimePay    string `csv:"upah_lembur"`
	GrossPay       string `csv:"bruto"`
	Deductions     string `csv:"potongan"`
	NetPay         string `csv:"neto"`
	Rekening       string `csv:"rekening"`
}
