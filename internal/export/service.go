package export

import (
	"context"
	"fmt"
	"time"

	"gigboard/api/internal/store"
)

// DataStore defines the interface for data access
type DataStore interface {
	GetUserByEmail(ctx context.Context, email string) (store.User, error)
	ListProjects(ctx context.Context, clientEmail string) ([]store.Project, error)
	ListApplicationsByProject(ctx context.Context, projectTitle string) ([]store.Application, error)
	ListApplicationsByFreelancer(ctx context.Context, freelancerEmail string) ([]store.Application, error)
	ListEarnings(ctx context.Context, freelancerEmail string) ([]store.EarningsEntry, error)
	TotalEarnings(ctx context.Context, freelancerEmail string) (int64, error)
}

// Service generates marketplace reports. uploader may be nil when object
// storage is not configured; reports are then returned inline only.
type Service struct {
	store    DataStore
	uploader *Uploader
}

func NewService(store DataStore, uploader *Uploader) *Service {
	return &Service{store: store, uploader: uploader}
}

// ClientApplicationsReport builds a CSV of every application across the
// client's projects.
func (s *Service) ClientApplicationsReport(ctx context.Context, clientEmail string) (*Result, error) {
	projects, err := s.store.ListProjects(ctx, clientEmail)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	var apps []store.Application
	for _, project := range projects {
		items, err := s.store.ListApplicationsByProject(ctx, project.Title)
		if err != nil {
			return nil, fmt.Errorf("list applications for %q: %w", project.Title, err)
		}
		apps = append(apps, items...)
	}

	return applicationsCSV(apps, "applications-"+clientEmail)
}

// FreelancerApplicationsReport builds a CSV of the freelancer's applications.
func (s *Service) FreelancerApplicationsReport(ctx context.Context, freelancerEmail string) (*Result, error) {
	apps, err := s.store.ListApplicationsByFreelancer(ctx, freelancerEmail)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return applicationsCSV(apps, "applications-"+freelancerEmail)
}

// EarningsStatement renders the freelancer's credited payouts as a PDF.
func (s *Service) EarningsStatement(ctx context.Context, freelancerEmail string) (*Result, error) {
	user, err := s.store.GetUserByEmail(ctx, freelancerEmail)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	entries, err := s.store.ListEarnings(ctx, freelancerEmail)
	if err != nil {
		return nil, fmt.Errorf("list earnings: %w", err)
	}
	total, err := s.store.TotalEarnings(ctx, freelancerEmail)
	if err != nil {
		return nil, fmt.Errorf("total earnings: %w", err)
	}

	data := StatementData{
		FreelancerName:  user.DisplayName,
		FreelancerEmail: freelancerEmail,
		GeneratedAt:     time.Now(),
		Total:           total,
	}
	for _, entry := range entries {
		data.Entries = append(data.Entries, StatementEntry{
			ProjectTitle: entry.ProjectTitle,
			Amount:       entry.Amount,
			CreditedAt:   entry.CreditedAt,
		})
	}

	html, err := RenderStatementHTML(data)
	if err != nil {
		return nil, fmt.Errorf("render statement: %w", err)
	}

	return exportPDF(html, "earnings-statement-"+freelancerEmail)
}

// Store uploads a generated report to object storage and returns its key.
func (s *Service) Store(ctx context.Context, owner string, res *Result) (string, error) {
	if s.uploader == nil {
		return "", ErrStorageUnavailable
	}
	return s.uploader.Upload(ctx, owner, res)
}
