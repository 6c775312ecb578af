package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"mediation_flow_go/models"
	"mediation_flow_go/repository"
)

// maxCaseNumberAttempts bounds retries when a concurrent insert takes the generated number
const maxCaseNumberAttempts = 5

// defaultCaseNumberPrefix is used for case types without their own prefix
const defaultCaseNumberPrefix = "RC"

var caseNumberPrefixes = map[string]string{
	models.CaseTypeFamilyDispute:    "FD",
	models.CaseTypeFinancialDispute: "FN",
	models.CaseTypeInheritance:      "IH",
	models.CaseTypeMarital:          "MR",
	models.CaseTypeBusiness:         "BZ",
}

// CaseNumberPrefix returns the case number prefix for a case type
func CaseNumberPrefix(caseType string) string {
	if prefix, ok := caseNumberPrefixes[caseType]; ok {
		return prefix
	}
	return defaultCaseNumberPrefix
}

// FormatCaseNumber renders {PREFIX}-{YEAR}-{SEQUENCE}, e.g. FD-2024-0001
func FormatCaseNumber(prefix string, year, sequence int) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, sequence)
}

// GenerateCaseNumber returns the next case number in the prefix/year partition
func GenerateCaseNumber(ctx context.Context, cases repository.CaseRepository, prefix string, year int) (string, error) {
	partition := fmt.Sprintf("%s-%d-", prefix, year)

	latest, err := cases.LatestCaseNumber(ctx, partition)
	if err != nil {
		return "", fmt.Errorf("failed to query latest case number: %w", err)
	}

	sequence := 1
	if latest != "" {
		if parsed, err := strconv.Atoi(strings.TrimPrefix(latest, partition)); err == nil {
			sequence = parsed + 1
		}
	}

	return FormatCaseNumber(prefix, year, sequence), nil
}

// CreateCaseInput is the payload for opening a case. Dates are YYYY-MM-DD strings.
type CreateCaseInput struct {
	Title            string                 `json:"title"`
	CaseType         string                 `json:"case_type"`
	Description      *string                `json:"description"`
	Priority         string                 `json:"priority"`
	Confidentiality  string                 `json:"confidentiality"`
	FilingDate       string                 `json:"filing_date"`
	PlaintiffID      *string                `json:"plaintiff_id"`
	DefendantID      *string                `json:"defendant_id"`
	MediatorID       *string                `json:"mediator_id"`
	SettlementDate   *string                `json:"settlement_date"`
	SettlementAmount *float64               `json:"settlement_amount"`
	SettlementTerms  *string                `json:"settlement_terms"`
	FollowUpRequired bool                   `json:"follow_up_required"`
	FollowUpDate     *string                `json:"follow_up_date"`
	Documents        []models.DocumentRef   `json:"documents"`
	Metadata         map[string]interface{} `json:"metadata"`
}

// CaseSearch narrows a case listing; empty fields are ignored
type CaseSearch struct {
	Status     string `query:"status"`
	CaseType   string `query:"case_type"`
	Priority   string `query:"priority"`
	MediatorID string `query:"mediator_id"`
	Query      string `query:"q"`
	FiledFrom  string `query:"filed_from"`
	FiledTo    string `query:"filed_to"`
	Page       int    `query:"page"`
	Limit      int    `query:"limit"`
}

// CaseRegistry creates and looks up cases
type CaseRegistry struct {
	store   repository.Store
	now     Clock
	numbers *keyedMutex
}

// NewCaseRegistry creates a registry over store
func NewCaseRegistry(store repository.Store, now Clock) *CaseRegistry {
	return &CaseRegistry{
		store:   store,
		now:     now.orDefault(),
		numbers: newKeyedMutex(),
	}
}

// CreateCase validates input, checks party references and stores a new case under a
// freshly generated case number
func (r *CaseRegistry) CreateCase(ctx context.Context, input CreateCaseInput, actorID string) (*models.Case, error) {
	c, err := buildCase(input)
	if err != nil {
		return nil, err
	}
	c.CreatedBy = actorID

	if err := r.checkParticipants(ctx, c); err != nil {
		return nil, err
	}

	prefix := CaseNumberPrefix(c.CaseType)
	year := c.FilingDate.Year()

	// Numbers are allocated one at a time per partition; the unique index catches
	// writers outside this process
	unlock := r.numbers.Lock(fmt.Sprintf("%s-%d", prefix, year))
	defer unlock()

	for attempt := 1; attempt <= maxCaseNumberAttempts; attempt++ {
		err := r.store.WithinTx(ctx, func(tx repository.Store) error {
			number, err := GenerateCaseNumber(ctx, tx.Cases(), prefix, year)
			if err != nil {
				return err
			}
			c.CaseNumber = number

			if c.MediatorID != nil {
				if err := ensureMediatorCapacity(ctx, tx, *c.MediatorID); err != nil {
					return err
				}
			}
			return tx.Cases().Create(ctx, c)
		})
		if err == nil {
			log.Printf("[CASE] Created case %s (%s) by %s", c.CaseNumber, c.ID, actorID)
			return c, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, storeError(err, "Case", c.ID, "create case")
		}
		log.Printf("[CASE] Case number %s already taken, retrying (attempt %d)", c.CaseNumber, attempt)
	}

	return nil, NewInternalError("create case",
		fmt.Errorf("no unique case number after %d attempts", maxCaseNumberAttempts))
}

// buildCase validates the input exhaustively and converts it into a Case
func buildCase(input CreateCaseInput) (*models.Case, error) {
	var errs validationErrors

	title := sanitizeText(input.Title)
	if title == "" {
		errs.add("Title is required")
	}

	if input.CaseType == "" {
		errs.add("Case type is required")
	} else if !models.IsValidCaseType(input.CaseType) {
		errs.add("Invalid case type: %s", input.CaseType)
	}

	if input.Priority != "" && !models.IsValidPriority(input.Priority) {
		errs.add("Invalid priority: %s", input.Priority)
	}
	if input.Confidentiality != "" && !models.IsValidConfidentiality(input.Confidentiality) {
		errs.add("Invalid confidentiality level: %s", input.Confidentiality)
	}

	var filingDate *time.Time
	if strings.TrimSpace(input.FilingDate) == "" {
		errs.add("Filing date is required")
	} else if parsed, err := ParseDate(input.FilingDate); err != nil {
		errs.add("Invalid filing date (expected YYYY-MM-DD)")
	} else {
		filingDate = &parsed
	}

	plaintiffID := normalizeID(input.PlaintiffID)
	defendantID := normalizeID(input.DefendantID)
	if plaintiffID != nil && defendantID != nil && *plaintiffID == *defendantID {
		errs.add("Plaintiff and defendant must be different persons")
	}

	settlementDate := parseOptionalDate(input.SettlementDate, "settlement date", &errs)
	if settlementDate != nil && filingDate != nil && settlementDate.Before(*filingDate) {
		errs.add("Settlement date cannot be before filing date")
	}
	if input.SettlementAmount != nil && *input.SettlementAmount < 0 {
		errs.add("Settlement amount cannot be negative")
	}
	followUpDate := parseOptionalDate(input.FollowUpDate, "follow-up date", &errs)

	if err := errs.err(); err != nil {
		return nil, err
	}

	c := &models.Case{
		Title:            title,
		CaseType:         input.CaseType,
		Description:      sanitizeOptional(input.Description),
		Priority:         input.Priority,
		Confidentiality:  input.Confidentiality,
		FilingDate:       *filingDate,
		PlaintiffID:      plaintiffID,
		DefendantID:      defendantID,
		MediatorID:       normalizeID(input.MediatorID),
		SettlementDate:   settlementDate,
		SettlementAmount: input.SettlementAmount,
		SettlementTerms:  sanitizeOptional(input.SettlementTerms),
		FollowUpRequired: input.FollowUpRequired,
		FollowUpDate:     followUpDate,
		Documents:        input.Documents,
		Metadata:         input.Metadata,
	}
	return c, nil
}

// checkParticipants resolves party and mediator references, failing on the first miss
func (r *CaseRegistry) checkParticipants(ctx context.Context, c *models.Case) error {
	refs := []struct {
		entity string
		id     *string
	}{
		{"Plaintiff", c.PlaintiffID},
		{"Defendant", c.DefendantID},
		{"Mediator", c.MediatorID},
	}
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		if _, err := r.store.Persons().Lookup(ctx, *ref.id); err != nil {
			return storeError(err, ref.entity, *ref.id, "look up "+strings.ToLower(ref.entity))
		}
	}
	return nil
}

// GetCase returns a live case
func (r *CaseRegistry) GetCase(ctx context.Context, id string) (*models.Case, error) {
	c, err := r.store.Cases().FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Case", id, "load case")
	}
	return c, nil
}

// SearchCases lists live cases matching the search, newest filing first
func (r *CaseRegistry) SearchCases(ctx context.Context, search CaseSearch) (*repository.PageResult[models.Case], error) {
	var errs validationErrors
	var filters []repository.Filter

	if search.Status != "" {
		if !models.IsValidCaseStatus(search.Status) {
			errs.add("Invalid status: %s", search.Status)
		}
		filters = append(filters, repository.Equals{Field: "status", Value: search.Status})
	}
	if search.CaseType != "" {
		if !models.IsValidCaseType(search.CaseType) {
			errs.add("Invalid case type: %s", search.CaseType)
		}
		filters = append(filters, repository.Equals{Field: "case_type", Value: search.CaseType})
	}
	if search.Priority != "" {
		if !models.IsValidPriority(search.Priority) {
			errs.add("Invalid priority: %s", search.Priority)
		}
		filters = append(filters, repository.Equals{Field: "priority", Value: search.Priority})
	}
	if search.MediatorID != "" {
		filters = append(filters, repository.Equals{Field: "mediator_id", Value: search.MediatorID})
	}
	if q := strings.TrimSpace(search.Query); q != "" {
		filters = append(filters, repository.Contains{Field: "title", Value: q})
	}

	from := parseOptionalDate(&search.FiledFrom, "filed_from date", &errs)
	to := parseOptionalDate(&search.FiledTo, "filed_to date", &errs)
	if from != nil || to != nil {
		dateRange := repository.Range{Field: "filing_date"}
		if from != nil {
			dateRange.From = *from
		}
		if to != nil {
			dateRange.To = *to
		}
		filters = append(filters, dateRange)
	}

	if err := errs.err(); err != nil {
		return nil, err
	}

	result, err := r.store.Cases().Search(ctx, filters, repository.Page{Page: search.Page, Limit: search.Limit})
	if err != nil {
		return nil, NewInternalError("search cases", err)
	}
	return result, nil
}

// GetRelatedCases returns other live cases sharing a plaintiff or defendant with the case
func (r *CaseRegistry) GetRelatedCases(ctx context.Context, id string) ([]models.Case, error) {
	c, err := r.GetCase(ctx, id)
	if err != nil {
		return nil, err
	}

	var parties []string
	for _, partyID := range []*string{c.PlaintiffID, c.DefendantID} {
		if partyID != nil {
			parties = append(parties, *partyID)
		}
	}

	related, err := r.store.Cases().ListByParties(ctx, parties, c.ID)
	if err != nil {
		return nil, NewInternalError("list related cases", err)
	}
	return related, nil
}

// SoftDeleteCase hides a case from every read path and records who removed it
func (r *CaseRegistry) SoftDeleteCase(ctx context.Context, id, actorID string) error {
	err := r.store.WithinTx(ctx, func(tx repository.Store) error {
		c, err := tx.Cases().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Cases().SoftDelete(ctx, id, actorID); err != nil {
			return err
		}
		return tx.Events().Append(ctx, &models.CaseEvent{
			CaseID:     id,
			Kind:       models.CaseEventDeleted,
			FromStatus: &c.Status,
			Message:    "Case deleted",
			ActorID:    actorID,
			OccurredAt: r.now(),
		})
	})
	if err != nil {
		return storeError(err, "Case", id, "delete case")
	}

	log.Printf("[CASE] Soft-deleted case %s by %s", id, actorID)
	return nil
}

// ensureMediatorCapacity fails when the mediator already holds a full caseload
func ensureMediatorCapacity(ctx context.Context, tx repository.Store, mediatorID string) error {
	active, err := tx.Cases().CountActiveByMediator(ctx, mediatorID)
	if err != nil {
		return err
	}
	if active >= models.MediatorCaseCapacity {
		return NewCapacityExceededError(mediatorID, active, models.MediatorCaseCapacity)
	}
	return nil
}

// normalizeID trims an optional reference and maps blanks to nil
func normalizeID(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
