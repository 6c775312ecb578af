package services

import (
	"context"
	"log"
	"math"
	"sort"
	"strings"

	"mediation_flow_go/models"
	"mediation_flow_go/repository"
)

// MediatorWorkload summarizes a mediator's caseload
type MediatorWorkload struct {
	MediatorID          string                   `json:"mediator_id"`
	StatusCounts        []repository.StatusCount `json:"status_counts"`
	TotalCases          int64                    `json:"total_cases"`
	TotalActiveCases    int64                    `json:"total_active_cases"`
	AverageHandlingDays int                      `json:"average_handling_days"`
	SuccessRate         float64                  `json:"success_rate"`
}

// MediatorAssignmentService assigns mediators under the workload cap and reports workloads
type MediatorAssignmentService struct {
	store    repository.Store
	now      Clock
	capacity int
}

// NewMediatorAssignmentService creates the service with the standard caseload cap
func NewMediatorAssignmentService(store repository.Store, now Clock) *MediatorAssignmentService {
	return &MediatorAssignmentService{
		store:    store,
		now:      now.orDefault(),
		capacity: models.MediatorCaseCapacity,
	}
}

// AssignMediator puts the mediator on the case and moves it to ASSIGNED. It fails with
// a capacity error, leaving the case untouched, when the mediator is already full.
func (s *MediatorAssignmentService) AssignMediator(ctx context.Context, caseID, mediatorID, actorID string) (*models.Case, error) {
	mediatorID = strings.TrimSpace(mediatorID)
	if mediatorID == "" {
		return nil, NewValidationError("Mediator ID is required")
	}

	var updated *models.Case
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		c, err := tx.Cases().FindByID(ctx, caseID)
		if err != nil {
			return err
		}
		if _, err := tx.Persons().Lookup(ctx, mediatorID); err != nil {
			return storeError(err, "Mediator", mediatorID, "look up mediator")
		}

		assigned, err := tx.Cases().AssignMediatorWithinCapacity(ctx, c.ID, mediatorID, s.capacity)
		if err != nil {
			return err
		}
		if !assigned {
			active, err := tx.Cases().CountActiveByMediator(ctx, mediatorID)
			if err != nil {
				return err
			}
			return NewCapacityExceededError(mediatorID, active, s.capacity)
		}

		now := s.now()
		annotation := assignmentAnnotation(now, mediatorID, actorID)
		if err := tx.Cases().PrependNotes(ctx, c.ID, annotation); err != nil {
			return err
		}
		previous := c.Status
		status := models.CaseStatusAssigned
		if err := tx.Events().Append(ctx, &models.CaseEvent{
			CaseID:     c.ID,
			Kind:       models.CaseEventMediatorAssigned,
			FromStatus: &previous,
			ToStatus:   &status,
			Message:    annotation,
			ActorID:    actorID,
			OccurredAt: now,
		}); err != nil {
			return err
		}

		updated, err = tx.Cases().FindByID(ctx, c.ID)
		return err
	})
	if err != nil {
		return nil, storeError(err, "Case", caseID, "assign mediator")
	}

	log.Printf("[CASE] Mediator %s assigned to case %s by %s", mediatorID, updated.CaseNumber, actorID)
	return updated, nil
}

// GetMediatorWorkload reports status counts, average handling time and settlement rate
// over every live case the mediator holds
func (s *MediatorAssignmentService) GetMediatorWorkload(ctx context.Context, mediatorID string) (*MediatorWorkload, error) {
	counts, err := s.store.Cases().CountByStatusForMediator(ctx, mediatorID)
	if err != nil {
		return nil, NewInternalError("count mediator cases", err)
	}
	sort.SliceStable(counts, func(i, j int) bool {
		ri, rj := models.StatusRank(counts[i].Status), models.StatusRank(counts[j].Status)
		if ri != rj {
			return ri < rj
		}
		return counts[i].Status < counts[j].Status
	})

	cases, err := s.store.Cases().ListByMediator(ctx, mediatorID)
	if err != nil {
		return nil, NewInternalError("list mediator cases", err)
	}

	workload := &MediatorWorkload{
		MediatorID:   mediatorID,
		StatusCounts: counts,
		TotalCases:   int64(len(cases)),
	}
	if workload.StatusCounts == nil {
		workload.StatusCounts = []repository.StatusCount{}
	}
	for _, sc := range counts {
		if models.IsActiveCaseStatus(sc.Status) {
			workload.TotalActiveCases += sc.Count
		}
	}
	if len(cases) == 0 {
		return workload, nil
	}

	today := s.now()
	var totalDays, settled int
	for _, c := range cases {
		end := today
		if c.SettlementDate != nil {
			end = *c.SettlementDate
		}
		totalDays += calendarDays(c.FilingDate, end)
		if c.Status == models.CaseStatusSettled {
			settled++
		}
	}

	workload.AverageHandlingDays = int(math.Round(float64(totalDays) / float64(len(cases))))
	workload.SuccessRate = math.Round(float64(settled)/float64(len(cases))*100*100) / 100
	return workload, nil
}
