package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/compliance"
	"github.com/cmlabs-hris/workforce-engine/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplianceRepository_RulesCRUD(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewComplianceRepository(setup.DB)

	rule, err := repo.CreateRule(ctx, compliance.ComplianceRule{
		Name: "Overtime cap", Type: compliance.RuleTypeMaxOvertimeHours, Threshold: 10, IsActive: true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rule.ID)

	inactive := false
	_, err = repo.UpdateRule(ctx, compliance.UpdateRuleRequest{ID: rule.ID, IsActive: &inactive})
	require.NoError(t, err)

	active, err := repo.GetActiveComplianceRules(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := repo.ListRules(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = repo.GetRuleByID(ctx, "missing")
	assert.ErrorIs(t, err, compliance.ErrComplianceRuleNotFound)
}

func TestComplianceRepository_OpenLogsAreDeduplicated(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewComplianceRepository(setup.DB)

	rule, err := repo.CreateRule(ctx, compliance.ComplianceRule{
		Name: "Lateness", Type: compliance.RuleTypeMaxLateArrivals, Threshold: 2, IsActive: true,
	})
	require.NoError(t, err)

	log := compliance.ComplianceLog{
		RuleID:        rule.ID,
		EmployeeID:    "emp-1",
		ViolationDate: time.Date(2024, 11, 10, 0, 0, 0, 0, time.UTC),
		Details:       "Lateness: late arrivals 3 vs maximum 2",
	}

	first, inserted, err := repo.PersistComplianceLog(ctx, log)
	require.NoError(t, err)
	assert.True(t, inserted)

	again, inserted, err := repo.PersistComplianceLog(ctx, log)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, first.ID, again.ID)

	resolved, err := repo.ResolveLog(ctx, first.ID, "hr-admin")
	require.NoError(t, err)
	assert.Equal(t, compliance.LogStatusResolved, resolved.Status)

	_, err = repo.ResolveLog(ctx, first.ID, "hr-admin")
	assert.ErrorIs(t, err, compliance.ErrLogAlreadyResolved)

	_, inserted, err = repo.PersistComplianceLog(ctx, log)
	require.NoError(t, err)
	assert.True(t, inserted, "a resolved log frees the key")

	logs, total, err := repo.ListLogs(ctx, compliance.LogFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, logs, 2)
}

func TestAttendanceRepository_WindowQuery(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()

	day := time.Date(2024, 11, 4, 9, 0, 0, 0, time.UTC)
	end := day.Add(8 * time.Hour)
	require.NoError(t, postgresql.InsertEntries(ctx, setup.DB, []attendance.AttendanceEntry{
		{EmployeeID: "emp-1", Start: day, End: &end, Kind: attendance.EntryKindPresent},
		{EmployeeID: "emp-1", Start: day.AddDate(0, 1, 0), Kind: attendance.EntryKindAbsent},
		{EmployeeID: "emp-2", Start: day, End: &end, Kind: attendance.EntryKindLate},
	}))

	repo := postgresql.NewAttendanceRepository(setup.DB)
	entries, err := repo.GetRawAttendance(ctx, "emp-1", day.Add(-time.Hour), day.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, attendance.EntryKindPresent, entries[0].Kind)

	ids, err := repo.ListEmployeeIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"emp-1", "emp-2"}, ids)
}
