package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ChungangLions/backend/internal/dto"
	"github.com/ChungangLions/backend/internal/models"
	"github.com/ChungangLions/backend/pkg/export"
	appErrors "github.com/ChungangLions/backend/pkg/errors"
)

type csvRenderer interface {
	Render(table export.Table) ([]byte, error)
}

type pdfRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

// ExportService renders proposals to downloadable documents: a single
// proposal as a PDF handout, a mailbox listing as CSV.
type ExportService struct {
	proposals *ProposalService
	csv       csvRenderer
	pdf       pdfRenderer
	logger    *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(proposals *ProposalService, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{proposals: proposals, csv: csv, pdf: pdf, logger: logger}
}

// ExportProposalPDF renders one proposal as a PDF. Visibility rules are the
// proposal service's.
func (s *ExportService) ExportProposalPDF(ctx context.Context, actor *models.JWTClaims, id string) ([]byte, string, error) {
	proposal, err := s.proposals.Get(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}

	doc := export.Document{
		Title: proposal.Title,
		Fields: []export.Field{
			{Label: "From", Value: fmt.Sprintf("%s (%s)", proposal.SenderName, proposal.AuthorRole)},
			{Label: "To", Value: fmt.Sprintf("%s (%s)", proposal.RecipientName, proposal.RecipientRole)},
			{Label: "Status", Value: string(proposal.CurrentStatus)},
			{Label: "Partnership types", Value: joinPartnershipTypes(proposal.PartnershipTypes)},
			{Label: "Apply target", Value: applyTargetLabel(proposal)},
			{Label: "Benefit", Value: proposal.BenefitDescription},
			{Label: "Time windows", Value: formatTimeWindows(proposal.TimeWindows)},
			{Label: "Period", Value: formatPeriod(proposal.PeriodStart, proposal.PeriodEnd)},
			{Label: "Expected effects", Value: proposal.ExpectedEffects},
			{Label: "Contact", Value: proposal.ContactInfo},
			{Label: "Contents", Value: proposal.Contents},
		},
	}

	payload, err := s.pdf.Render(doc)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render proposal PDF")
	}
	filename := fmt.Sprintf("proposal-%s.pdf", proposal.ID)
	return payload, filename, nil
}

// ExportProposalsCSV renders the actor's mailbox listing as CSV.
func (s *ExportService) ExportProposalsCSV(ctx context.Context, actor *models.JWTClaims, query dto.ProposalQuery) ([]byte, string, error) {
	query.Page = 1
	query.PageSize = 100
	proposals, _, err := s.proposals.List(ctx, actor, query)
	if err != nil {
		return nil, "", err
	}

	table := export.Table{
		Columns: []string{"ID", "Title", "From", "To", "Status", "Types", "Benefit", "Period", "Created"},
	}
	for _, p := range proposals {
		table.Rows = append(table.Rows, []string{
			p.ID,
			p.Title,
			p.SenderName,
			p.RecipientName,
			string(p.CurrentStatus),
			joinPartnershipTypes(p.PartnershipTypes),
			p.BenefitDescription,
			formatPeriod(p.PeriodStart, p.PeriodEnd),
			p.CreatedAt.Format("2006-01-02"),
		})
	}

	payload, err := s.csv.Render(table)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render proposals CSV")
	}
	filename := fmt.Sprintf("proposals-%s.csv", time.Now().UTC().Format("20060102"))
	return payload, filename, nil
}

func joinPartnershipTypes(types models.PartnershipTypeList) string {
	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, ", ")
}

func applyTargetLabel(p *models.Proposal) string {
	if p.ApplyTarget == models.ApplyTargetOther {
		return p.ApplyTargetOther
	}
	return string(p.ApplyTarget)
}

func formatTimeWindows(windows models.TimeWindowList) string {
	parts := make([]string, 0, len(windows))
	for _, w := range windows {
		parts = append(parts, fmt.Sprintf("%s %s-%s", strings.Join(w.Days, "/"), w.Start, w.End))
	}
	return strings.Join(parts, "; ")
}

func formatPeriod(start, end *time.Time) string {
	format := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format("2006-01-02")
	}
	return format(start) + " ~ " + format(end)
}
