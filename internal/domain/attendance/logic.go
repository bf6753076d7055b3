package attendance

import (
	"math"
	"sort"
	"time"
)

func DocID(employeeID, tanggal string) string {
	return employeeID + "_" + tanggal
}

// Summarize recomputes the derived fields of a day: totalHours sums closed
// shifts and overtimeCount counts shifts flagged lembur plus every shift
// after the first.
func Summarize(a *Attendance) {
	var hours float64
	overtime := 0
	for i, s := range a.Shifts {
		if s.CheckOut != nil && s.CheckOut.After(s.CheckIn) {
			hours += s.CheckOut.Sub(s.CheckIn).Hours()
		}
		if s.Lembur || i > 0 {
			overtime++
		}
	}
	a.TotalHours = math.Round(hours*100) / 100
	a.OvertimeCount = overtime
}

// ArrivalStatus is late when the first check-in is after workStart.
func ArrivalStatus(firstCheckIn, workStart time.Time) string {
	if firstCheckIn.After(workStart) {
		return StatusLate
	}
	return StatusPresent
}

// SummarizePeriod folds daily records into per-employee totals sorted by
// employee name.
func SummarizePeriod(records []Attendance) []Summary {
	byEmployee := map[string]*Summary{}
	for _, a := range records {
		s, ok := byEmployee[a.EmployeeID]
		if !ok {
			s = &Summary{EmployeeID: a.EmployeeID, EmployeeName: a.EmployeeName}
			byEmployee[a.EmployeeID] = s
		}
		switch a.Status {
		case StatusPresent:
			s.Present++
		case StatusLate:
			s.Late++
		case StatusAbsent:
			s.Absent++
		case StatusLeave:
			s.Leave++
		}
		if a.Worked() {
			s.DaysWorked++
		}
		s.TotalHours += a.TotalHours
		s.OvertimeCount += a.OvertimeCount
	}
	out := make([]Summary, 0, len(byEmployee))
	for _, s := range byEmployee {
		s.TotalHours = math.Round(s.TotalHours*100) / 100
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeName == out[j].EmployeeName {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		return out[i].EmployeeName < out[j].EmployeeName
	})
	return out
}
