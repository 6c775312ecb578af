package services

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"mediation_flow_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

func TestAssignMediator(t *testing.T) {
	ctx := context.Background()

	t.Run("Succeeds at nine active cases", func(t *testing.T) {
		env := newTestEnv(t)
		mediator := env.person(t, "Nina", models.PersonRoleMediator)
		env.seedActiveCases(t, mediator.ID, 9)
		c := env.createCase(t, nil)

		updated, err := env.svc.Mediators.AssignMediator(ctx, c.ID, mediator.ID, "officer-1")
		require.NoError(t, err)
		assert.Equal(t, models.CaseStatusAssigned, updated.Status)
		assert.Equal(t, mediator.ID, *updated.MediatorID)
		assert.True(t, strings.HasPrefix(updated.Notes, "[Mediator Assigned] 2024-03-15T09:30:00Z: Mediator "+mediator.ID))

		events, err := env.svc.Timeline.GetCaseEvents(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, models.CaseEventMediatorAssigned, events[0].Kind)
	})

	t.Run("Fails at ten active cases and leaves the case unchanged", func(t *testing.T) {
		env := newTestEnv(t)
		mediator := env.person(t, "Tess", models.PersonRoleMediator)
		env.seedActiveCases(t, mediator.ID, 10)
		c := env.createCase(t, nil)

		_, err := env.svc.Mediators.AssignMediator(ctx, c.ID, mediator.ID, "officer-1")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCapacityExceeded)

		var svcErr *Error
		require.True(t, errors.As(err, &svcErr))
		assert.Equal(t, 409, svcErr.HTTPStatus())

		reloaded, err := env.svc.Registry.GetCase(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, models.CaseStatusNew, reloaded.Status)
		assert.Nil(t, reloaded.MediatorID)
		assert.Empty(t, reloaded.Notes)

		events, err := env.svc.Timeline.GetCaseEvents(ctx, c.ID)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("Terminal cases do not count", func(t *testing.T) {
		env := newTestEnv(t)
		mediator := env.person(t, "Omar", models.PersonRoleMediator)
		env.seedActiveCases(t, mediator.ID, 9)
		settled := env.createCase(t, func(in *CreateCaseInput) { in.MediatorID = &mediator.ID })
		_, err := env.svc.Lifecycle.SettleCase(ctx, settled.ID, SettlementInput{}, "officer-1")
		require.NoError(t, err)

		c := env.createCase(t, nil)
		_, err = env.svc.Mediators.AssignMediator(ctx, c.ID, mediator.ID, "officer-1")
		assert.NoError(t, err)
	})

	t.Run("Missing references", func(t *testing.T) {
		env := newTestEnv(t)
		mediator := env.person(t, "Rita", models.PersonRoleMediator)
		c := env.createCase(t, nil)

		_, err := env.svc.Mediators.AssignMediator(ctx, "missing", mediator.ID, "officer-1")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = env.svc.Mediators.AssignMediator(ctx, c.ID, "ghost", "officer-1")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, "Mediator not found: ghost", err.Error())

		_, err = env.svc.Mediators.AssignMediator(ctx, c.ID, " ", "officer-1")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Concurrent assignments never exceed capacity", func(t *testing.T) {
		env := newTestEnv(t)
		mediator := env.person(t, "Sam", models.PersonRoleMediator)
		env.seedActiveCases(t, mediator.ID, 7)

		var caseIDs []string
		for i := 0; i < 6; i++ {
			caseIDs = append(caseIDs, env.createCase(t, nil).ID)
		}

		var assigned, rejected int32
		var g errgroup.Group
		for _, id := range caseIDs {
			id := id
			g.Go(func() error {
				_, err := env.svc.Mediators.AssignMediator(ctx, id, mediator.ID, "officer-1")
				switch {
				case err == nil:
					atomic.AddInt32(&assigned, 1)
				case errors.Is(err, ErrCapacityExceeded):
					atomic.AddInt32(&rejected, 1)
				default:
					return err
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())

		assert.Equal(t, int32(3), assigned)
		assert.Equal(t, int32(3), rejected)

		active, err := env.store.Cases().CountActiveByMediator(ctx, mediator.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(models.MediatorCaseCapacity), active)
	})
}

func TestCreateCaseRespectsMediatorCapacity(t *testing.T) {
	env := newTestEnv(t)
	mediator := env.person(t, "Full", models.PersonRoleMediator)
	env.seedActiveCases(t, mediator.ID, 10)

	_, err := env.svc.Registry.CreateCase(context.Background(), CreateCaseInput{
		Title:      "Overflow",
		CaseType:   models.CaseTypeBusiness,
		FilingDate: "2024-02-01",
		MediatorID: &mediator.ID,
	}, "officer-1")
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestGetMediatorWorkload(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	mediator := env.person(t, "Wendy", models.PersonRoleMediator)

	// Clock is 2024-03-15; filed 2024-01-10 and still open: 65 days
	open := env.createCase(t, func(in *CreateCaseInput) { in.MediatorID = &mediator.ID })
	// Filed 2024-01-10, settled 2024-02-09: 30 days
	settled := env.createCase(t, func(in *CreateCaseInput) { in.MediatorID = &mediator.ID })
	_, err := env.svc.Lifecycle.SettleCase(ctx, settled.ID, SettlementInput{Date: ptr("2024-02-09")}, "mediator-1")
	require.NoError(t, err)
	// Filed 2024-03-05, dismissed: 10 days
	dismissed := env.createCase(t, func(in *CreateCaseInput) {
		in.MediatorID = &mediator.ID
		in.FilingDate = "2024-03-05"
	})
	_, err = env.svc.Lifecycle.UpdateCaseStatus(ctx, dismissed.ID, models.CaseStatusDismissed, "", "mediator-1")
	require.NoError(t, err)
	_, err = env.svc.Lifecycle.UpdateCaseStatus(ctx, open.ID, models.CaseStatusMediation, "", "mediator-1")
	require.NoError(t, err)

	workload, err := env.svc.Mediators.GetMediatorWorkload(ctx, mediator.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), workload.TotalCases)
	assert.Equal(t, int64(1), workload.TotalActiveCases)
	assert.Equal(t, 35, workload.AverageHandlingDays)
	assert.Equal(t, 33.33, workload.SuccessRate)

	var statuses []string
	for _, sc := range workload.StatusCounts {
		statuses = append(statuses, sc.Status)
		assert.Equal(t, int64(1), sc.Count)
	}
	assert.Equal(t, []string{models.CaseStatusMediation, models.CaseStatusSettled, models.CaseStatusDismissed}, statuses)

	again, err := env.svc.Mediators.GetMediatorWorkload(ctx, mediator.ID)
	require.NoError(t, err)
	assert.Equal(t, workload, again)

	empty, err := env.svc.Mediators.GetMediatorWorkload(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, empty.TotalCases)
	assert.Zero(t, empty.SuccessRate)
	assert.Empty(t, empty.StatusCounts)
}

func TestExportWorkloads(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	mediator := env.person(t, "Xavier", models.PersonRoleMediator)
	env.createCase(t, func(in *CreateCaseInput) { in.MediatorID = &mediator.ID })

	buf, err := env.svc.Mediators.ExportWorkloads(ctx, []string{mediator.ID, mediator.ID, "unknown"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Workload")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Mediator ID", rows[0][0])
	assert.Equal(t, mediator.ID, rows[1][0])
	assert.Equal(t, "Xavier", rows[1][1])
	assert.Equal(t, "1", rows[1][2])
	assert.Equal(t, "unknown", rows[2][0])

	_, err = env.svc.Mediators.ExportWorkloads(ctx, []string{" "})
	assert.ErrorIs(t, err, ErrValidation)
}
