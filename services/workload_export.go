package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"mediation_flow_go/models"
	"mediation_flow_go/repository"

	"github.com/xuri/excelize/v2"
)

const workloadSheet = "Workload"

// ExportWorkloads renders the workload of each mediator as one row of an XLSX workbook
func (s *MediatorAssignmentService) ExportWorkloads(ctx context.Context, mediatorIDs []string) (*bytes.Buffer, error) {
	var ids []string
	seen := map[string]bool{}
	for _, id := range mediatorIDs {
		id = strings.TrimSpace(id)
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, NewValidationError("At least one mediator ID is required")
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", workloadSheet)

	headers := []string{"Mediator ID", "Mediator", "Total Cases", "Active Cases"}
	headers = append(headers, models.CaseStatusOrder...)
	headers = append(headers, "Average Handling Days", "Success Rate (%)")
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(workloadSheet, cell, header)
	}

	for row, id := range ids {
		workload, err := s.GetMediatorWorkload(ctx, id)
		if err != nil {
			return nil, err
		}

		name := ""
		person, err := s.store.Persons().Lookup(ctx, id)
		switch {
		case err == nil:
			name = person.Name
		case !errors.Is(err, repository.ErrNotFound):
			return nil, NewInternalError("look up mediator", err)
		}

		byStatus := map[string]int64{}
		for _, sc := range workload.StatusCounts {
			byStatus[sc.Status] = sc.Count
		}

		values := []interface{}{id, name, workload.TotalCases, workload.TotalActiveCases}
		for _, status := range models.CaseStatusOrder {
			values = append(values, byStatus[status])
		}
		values = append(values, workload.AverageHandlingDays, workload.SuccessRate)

		cell, _ := excelize.CoordinatesToCellName(1, row+2)
		if err := f.SetSheetRow(workloadSheet, cell, &values); err != nil {
			return nil, NewInternalError("write workload row", err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	f.SetColWidth(workloadSheet, "A", lastCol, 18)
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(workloadSheet, "A1", lastCol+"1", headerStyle)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, NewInternalError("write workload workbook", fmt.Errorf("excel buffer: %w", err))
	}
	return buf, nil
}
