package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"gigboard/api/internal/store"
)

var applicationsHeader = []string{
	"project_title", "freelancer_email", "freelancer_name", "proposed_amount",
	"deadline", "state", "project_status", "rejection_reason",
	"freelancer_rating", "applied_at", "updated_at",
}

// applicationsCSV renders applications as a CSV report.
func applicationsCSV(apps []store.Application, title string) (*Result, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(applicationsHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, app := range apps {
		row := []string{
			app.ProjectTitle,
			app.FreelancerEmail,
			app.FreelancerName,
			strconv.FormatInt(app.ProposedAmount, 10),
			app.Deadline,
			string(app.State),
			app.ProjectStatus,
			app.RejectionReason,
			strconv.Itoa(app.FreelancerRating),
			app.AppliedAt.Format(time.RFC3339),
			app.UpdatedAt.Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return &Result{
		Data:     buf.Bytes(),
		Filename: sanitizeFilename(title) + ".csv",
		MimeType: "text/csv",
	}, nil
}
