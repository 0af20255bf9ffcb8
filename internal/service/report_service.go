package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"service-portal/internal/model"
	"service-portal/internal/repository"
)

const (
	emergencySheet  = "Emergencies"
	complaintSheet  = "Complaints"
	reportPageSize  = 500
	reportTimestamp = "2006-01-02 15:04"
)

type ReportService struct {
	emergencyRepo *repository.EmergencyRepository
	complaintRepo *repository.ComplaintRepository
}

func NewReportService(emergencyRepo *repository.EmergencyRepository, complaintRepo *repository.ComplaintRepository) *ReportService {
	return &ReportService{
		emergencyRepo: emergencyRepo,
		complaintRepo: complaintRepo,
	}
}

type ReportOptions struct {
	From *time.Time
}

// ExportXLSX renders emergencies and complaints created since opts.From
// into a workbook with one sheet per request kind.
func (s *ReportService) ExportXLSX(ctx context.Context, principal model.Principal, opts ReportOptions) ([]byte, error) {
	if err := authorize(principal, CapExportReports); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", emergencySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(complaintSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, err
	}

	if err := s.writeEmergencies(ctx, f, headerStyle, opts.From); err != nil {
		return nil, err
	}
	if err := s.writeComplaints(ctx, f, headerStyle, opts.From); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ReportService) writeEmergencies(ctx context.Context, f *excelize.File, headerStyle int, from *time.Time) error {
	headers := []string{"ID", "Type", "Priority", "Status", "Address", "Created", "Assigned", "Resolved", "Vehicle"}
	if err := writeHeader(f, emergencySheet, headers, headerStyle); err != nil {
		return err
	}

	row := 2
	for offset := 0; ; offset += reportPageSize {
		requests, err := s.emergencyRepo.List(ctx, repository.EmergencyFilter{CreatedFrom: from, Limit: reportPageSize, Offset: offset})
		if err != nil {
			return err
		}
		for _, r := range requests {
			record := emergencyRecord(r)
			values := []interface{}{
				r.ID.String(),
				record.TypeName,
				string(r.Priority),
				string(r.Status),
				r.Address,
				r.CreatedAt.Format(reportTimestamp),
				formatOptionalTime(r.AssignedAt),
				formatOptionalTime(r.ResolvedAt),
				lastVehicleNumber(r),
			}
			if err := writeRow(f, emergencySheet, row, values); err != nil {
				return err
			}
			row++
		}
		if len(requests) < reportPageSize {
			return nil
		}
	}
}

func (s *ReportService) writeComplaints(ctx context.Context, f *excelize.File, headerStyle int, from *time.Time) error {
	headers := []string{"Complaint ID", "Category", "Department", "Title", "Priority", "Status", "Officer", "Created", "Resolved", "Rating"}
	if err := writeHeader(f, complaintSheet, headers, headerStyle); err != nil {
		return err
	}

	row := 2
	for offset := 0; ; offset += reportPageSize {
		complaints, err := s.complaintRepo.List(ctx, repository.ComplaintFilter{CreatedFrom: from, Limit: reportPageSize, Offset: offset})
		if err != nil {
			return err
		}
		for _, c := range complaints {
			record := complaintRecord(c)
			officer := ""
			if record.AssignedOfficer != nil {
				officer = record.AssignedOfficer.Username
			}
			var rating interface{} = ""
			if c.SatisfactionRating != nil {
				rating = *c.SatisfactionRating
			}
			values := []interface{}{
				c.Code,
				record.TypeName,
				record.Department,
				c.Title,
				string(c.Priority),
				string(c.Status),
				officer,
				c.CreatedAt.Format(reportTimestamp),
				formatOptionalTime(c.ResolvedAt),
				rating,
			}
			if err := writeRow(f, complaintSheet, row, values); err != nil {
				return err
			}
			row++
		}
		if len(complaints) < reportPageSize {
			return nil
		}
	}
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 20)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// lastVehicleNumber names the vehicle of the most recent dispatch.
func lastVehicleNumber(r model.EmergencyRequest) string {
	var latest *model.DispatchRecord
	for i := range r.Dispatches {
		d := &r.Dispatches[i]
		if latest == nil || d.AssignedAt.After(latest.AssignedAt) {
			latest = d
		}
	}
	if latest == nil || latest.Vehicle == nil {
		return ""
	}
	return latest.Vehicle.VehicleNumber
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(reportTimestamp)
}
