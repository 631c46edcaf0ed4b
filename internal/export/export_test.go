package export

import (
	"context"
	"strings"
	"testing"
	"time"

	"gigboard/api/internal/store"
)

type fakeDataStore struct {
	projects []store.Project
	apps     map[string][]store.Application
	earnings []store.EarningsEntry
	total    int64
}

func (f *fakeDataStore) GetUserByEmail(_ context.Context, email string) (store.User, error) {
	return store.User{Email: email, DisplayName: "Dev"}, nil
}

func (f *fakeDataStore) ListProjects(_ context.Context, _ string) ([]store.Project, error) {
	return f.projects, nil
}

func (f *fakeDataStore) ListApplicationsByProject(_ context.Context, title string) ([]store.Application, error) {
	return f.apps[title], nil
}

func (f *fakeDataStore) ListApplicationsByFreelancer(_ context.Context, email string) ([]store.Application, error) {
	var out []store.Application
	for _, apps := range f.apps {
		for _, app := range apps {
			if app.FreelancerEmail == email {
				out = append(out, app)
			}
		}
	}
	return out, nil
}

func (f *fakeDataStore) ListEarnings(_ context.Context, _ string) ([]store.EarningsEntry, error) {
	return f.earnings, nil
}

func (f *fakeDataStore) TotalEarnings(_ context.Context, _ string) (int64, error) {
	return f.total, nil
}

func TestClientApplicationsReport(t *testing.T) {
	ds := &fakeDataStore{
		projects: []store.Project{{Title: "Landing Page", ClientEmail: "client@example.com"}},
		apps: map[string][]store.Application{
			"Landing Page": {
				{
					ProjectTitle:    "Landing Page",
					FreelancerEmail: "dev@example.com",
					FreelancerName:  "Dev",
					ProposedAmount:  500,
					State:           store.StateAccepted,
					ProjectStatus:   store.ProjectActive,
					AppliedAt:       time.Now(),
					UpdatedAt:       time.Now(),
				},
			},
		},
	}
	svc := NewService(ds, nil)

	res, err := svc.ClientApplicationsReport(context.Background(), "client@example.com")
	if err != nil {
		t.Fatalf("ClientApplicationsReport() error = %v", err)
	}
	if res.MimeType != "text/csv" {
		t.Errorf("unexpected mime type %q", res.MimeType)
	}
	if !strings.HasSuffix(res.Filename, ".csv") {
		t.Errorf("unexpected filename %q", res.Filename)
	}

	body := string(res.Data)
	if !strings.Contains(body, "project_title,freelancer_email") {
		t.Error("csv missing header row")
	}
	if !strings.Contains(body, "Landing Page,dev@example.com,Dev,500") {
		t.Errorf("csv missing application row:\n%s", body)
	}
	if !strings.Contains(body, "ACCEPTED") {
		t.Error("csv missing negotiation state")
	}
}

func TestClientApplicationsReportEmpty(t *testing.T) {
	svc := NewService(&fakeDataStore{}, nil)

	res, err := svc.ClientApplicationsReport(context.Background(), "client@example.com")
	if err != nil {
		t.Fatalf("ClientApplicationsReport() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(res.Data)), "\n")
	if len(lines) != 1 {
		t.Errorf("expected header only, got %d lines", len(lines))
	}
}

func TestStoreWithoutUploader(t *testing.T) {
	svc := NewService(&fakeDataStore{}, nil)
	if _, err := svc.Store(context.Background(), "dev@example.com", &Result{}); err != ErrStorageUnavailable {
		t.Errorf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestRenderStatementHTML(t *testing.T) {
	data := StatementData{
		FreelancerName:  "Dev",
		FreelancerEmail: "dev@example.com",
		GeneratedAt:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Entries: []StatementEntry{
			{ProjectTitle: "Landing Page", Amount: 500, CreditedAt: time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)},
			{ProjectTitle: "API Revamp", Amount: 1250, CreditedAt: time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)},
		},
		Total: 1750,
	}

	html, err := RenderStatementHTML(data)
	if err != nil {
		t.Fatalf("RenderStatementHTML() error = %v", err)
	}

	for _, want := range []string{"Dev", "dev@example.com", "Landing Page", "$500", "$1,250", "$1,750"} {
		if !strings.Contains(html, want) {
			t.Errorf("statement HTML missing %q", want)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   int64
		expected string
	}{
		{0, "$0"},
		{5, "$5"},
		{500, "$500"},
		{1500, "$1,500"},
		{1234567, "$1,234,567"},
		{-900, "-$900"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.amount); got != tt.expected {
			t.Errorf("FormatMoney(%d) = %q, want %q", tt.amount, got, tt.expected)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "Hello-World"},
		{"earnings-statement-dev@example.com", "earnings-statement-devexamplecom"},
		{"", "report"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.input); got != tt.expected {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestPercentEncodeForDataURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello world", "hello%20world"},
		{"test+sign", "test%2Bsign"},
		{"normal-text.txt", "normal-text.txt"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := percentEncodeForDataURL(tt.input); got != tt.expected {
			t.Errorf("percentEncodeForDataURL(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
