package attendance

import (
	"time"

	"c2ms/internal/platform/docstore"
)

const (
	StatusPresent = "present"
	StatusLate    = "late"
	StatusAbsent  = "absent"
	StatusLeave   = "leave"
)

var Statuses = []string{StatusPresent, StatusLate, StatusAbsent, StatusLeave}

type Shift struct {
	CheckIn  time.Time  `json:"checkIn"`
	CheckOut *time.Time `json:"checkOut,omitempty"`
	Lembur   bool       `json:"lembur"`
}

func (s Shift) Open() bool { return s.CheckOut == nil }

// Attendance is one employee-day. Its id is "<employeeId>_<tanggal>".
type Attendance struct {
	docstore.Meta
	EmployeeID    string  `json:"employeeId"`
	EmployeeName  string  `json:"employeeName"`
	Tanggal       string  `json:"tanggal"`
	Shifts        []Shift `json:"shifts"`
	Status        string  `json:"status"`
	TotalHours    float64 `json:"totalHours"`
	OvertimeCount int     `json:"overtimeCount"`
	Catatan       string  `json:"catatan,omitempty"`
}

// Worked reports whether the day counts as a working day for payroll.
func (a Attendance) Worked() bool {
	return a.Status == StatusPresent || a.Status == StatusLate
}

type RecordInput struct {
	EmployeeID string
	Tanggal    string
	Status     string
	Shifts     []Shift
	Catatan    string
}

type Summary struct {
	EmployeeID    string  `json:"employeeId"`
	EmployeeName  string  `json:"employeeName"`
	Present       int     `json:"present"`
	Late          int     `json:"late"`
	Absent        int     `json:"absent"`
	Leave         int     `json:"leave"`
	DaysWorked    int     `json:"daysWorked"`
	TotalHours    float64 `json:"totalHours"`
	OvertimeCount int     `json:"overtimeCount"`
}
