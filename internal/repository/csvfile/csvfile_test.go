package csvfile

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `id,employee_id,start,end,kind
a1,emp-1,2024-11-04T09:00:00Z,2024-11-04T17:00:00Z,present
a2,emp-1,2024-11-05T09:30:00Z,,Late
a3,emp-2,2024-11-06,,absent
`

func TestReadAttendance(t *testing.T) {
	entries, err := ReadAttendance(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "a1", entries[0].ID)
	require.NotNil(t, entries[0].End)
	assert.Equal(t, 8*time.Hour, entries[0].End.Sub(entries[0].Start))

	assert.Equal(t, attendance.EntryKindLate, entries[1].Kind)
	assert.Nil(t, entries[1].End)

	assert.Equal(t, time.Date(2024, 11, 6, 0, 0, 0, 0, time.UTC), entries[2].Start)
}

func TestReadAttendance_BadRows(t *testing.T) {
	_, err := ReadAttendance(strings.NewReader("employee_id,start,end,kind\nemp-1,yesterday,,present\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")

	_, err = ReadAttendance(strings.NewReader("employee_id,start,end,kind\n,2024-11-04,,present\n"))
	assert.Error(t, err)
}

func TestLoadAttendance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	repo, err := LoadAttendance(path)
	require.NoError(t, err)

	ids, err := repo.ListEmployeeIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"emp-1", "emp-2"}, ids)

	_, err = LoadAttendance(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestWriteAttendance_ReadsBack(t *testing.T) {
	in, err := ReadAttendance(strings.NewReader(sample))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteAttendance(&buf, in))

	out, err := ReadAttendance(&buf)
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i := range in {
		assert.True(t, in[i].Start.Equal(out[i].Start))
		assert.Equal(t, in[i].Kind, out[i].Kind)
	}
}

func TestWriteRegister(t *testing.T) {
	notes := "computed net salary -20.00 clamped to 0.00"
	records := []payroll.PayrollRecord{
		{
			EmployeeID:  "emp-1",
			PayPeriod:   "2024-11",
			BaseSalary:  money.MustParse("5000"),
			GrossSalary: money.MustParse("5500"),
			Taxes:       money.MustParse("550"),
			NetSalary:   money.MustParse("4850"),
			Status:      payroll.PayrollStatusDraft,
			AllowancesBreakdown: []payroll.BreakdownItem{
				{Name: "Housing", Kind: payroll.ValueKindFixed, Amount: money.MustParse("500")},
			},
			DeductionsBreakdown: []payroll.BreakdownItem{
				{Name: "Pension", Kind: payroll.ValueKindFixed, Amount: money.MustParse("100")},
			},
		},
		{EmployeeID: "emp-2", PayPeriod: "2024-11", Status: payroll.PayrollStatusError, Notes: &notes},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRegister(&buf, records))
	assert.True(t, strings.HasPrefix(buf.String(), "employee_id,pay_period,base_salary"))

	rows, err := ReadRegister(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, money.MustParse("500"), rows[0].Allowances)
	assert.Equal(t, money.MustParse("100"), rows[0].Deductions)
	assert.Equal(t, money.MustParse("4850"), rows[0].NetSalary)
	assert.Equal(t, notes, rows[1].Notes)
}
