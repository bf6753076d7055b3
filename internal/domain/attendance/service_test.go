package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"c2ms/internal/domain/employees"
	"c2ms/internal/platform/config"
	"c2ms/internal/platform/docstore"
	"c2ms/internal/platform/period"
)

func setup(t *testing.T) (*Service, *employees.Employee) {
	t.Helper()
	backend := docstore.NewMemory()
	empSvc := employees.NewService(backend)
	emp, err := empSvc.Create(context.Background(), employees.Input{Nama: "Agus"})
	require.NoError(t, err)
	profile := config.DefaultProfile()
	profile.Timezone = "UTC"
	return NewService(backend, empSvc, profile), emp
}

func TestCheckInOutFlow(t *testing.T) {
	svc, emp := setup(t)
	ctx := context.Background()

	a, err := svc.CheckIn(ctx, emp.ID, at(8, 10), false)
	require.NoError(t, err)
	assert.Equal(t, DocID(emp.ID, "2026-03-02"), a.ID)
	assert.Equal(t, StatusLate, a.Status)
	assert.Equal(t, "Agus", a.EmployeeName)

	_, err = svc.CheckIn(ctx, emp.ID, at(9, 0), false)
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)

	a, err = svc.CheckOut(ctx, emp.ID, at(16, 10))
	require.NoError(t, err)
	assert.InDelta(t, 8.0, a.TotalHours, 0.001)
	assert.Equal(t, 0, a.OvertimeCount)

	_, err = svc.CheckIn(ctx, emp.ID, at(19, 0), true)
	require.NoError(t, err)
	a, err = svc.CheckOut(ctx, emp.ID, at(22, 0))
	require.NoError(t, err)
	assert.InDelta(t, 11.0, a.TotalHours, 0.001)
	assert.Equal(t, 1, a.OvertimeCount)
	assert.Equal(t, StatusLate, a.Status, "status is decided by the first shift")

	_, err = svc.CheckOut(ctx, emp.ID, at(23, 0))
	assert.ErrorIs(t, err, ErrNotCheckedIn)
}

func TestCheckOutAfterMidnight(t *testing.T) {
	svc, emp := setup(t)
	ctx := context.Background()
	_, err := svc.CheckIn(ctx, emp.ID, at(20, 0), true)
	require.NoError(t, err)

	a, err := svc.CheckOut(ctx, emp.ID, time.Date(2026, 3, 3, 2, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", a.Tanggal)
	assert.InDelta(t, 6.0, a.TotalHours, 0.001)
}

func TestInactiveEmployeeCannotCheckIn(t *testing.T) {
	backend := docstore.NewMemory()
	empSvc := employees.NewService(backend)
	emp, err := empSvc.Create(context.Background(), employees.Input{Nama: "Dedi", Status: employees.StatusNonaktif})
	require.NoError(t, err)
	svc := NewService(backend, empSvc, config.DefaultProfile())

	_, err = svc.CheckIn(context.Background(), emp.ID, at(8, 0), false)
	assert.ErrorIs(t, err, ErrInactiveEmployee)
}

func TestRecordAndSummary(t *testing.T) {
	svc, emp := setup(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, RecordInput{EmployeeID: emp.ID, Tanggal: "2026-03-03", Status: StatusLeave})
	require.NoError(t, err)
	_, err = svc.Record(ctx, RecordInput{EmployeeID: emp.ID, Tanggal: "2026-03-04", Status: StatusPresent, Shifts: []Shift{closed(at(8, 0), at(16, 0), false)}})
	require.NoError(t, err)
	_, err = svc.Record(ctx, RecordInput{EmployeeID: emp.ID, Tanggal: "2026-04-01", Status: StatusPresent})
	require.NoError(t, err)

	_, err = svc.Record(ctx, RecordInput{EmployeeID: emp.ID, Tanggal: "04/03/2026", Status: StatusPresent})
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = svc.Record(ctx, RecordInput{EmployeeID: emp.ID, Tanggal: "2026-03-05", Status: "sick"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	march := period.Month(2026, time.March, time.UTC)
	summary, err := svc.Summary(ctx, march)
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, 1, summary[0].Leave)
	assert.Equal(t, 1, summary[0].Present)
	assert.Equal(t, 1, summary[0].DaysWorked)
	assert.InDelta(t, 8.0, summary[0].TotalHours, 0.001)

	list, err := svc.List(ctx, emp.ID, nil)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2026-04-01", list[0].Tanggal)
}
