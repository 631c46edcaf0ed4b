package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// legacyApplication mirrors the browser-local-storage layout the prototype
// kept in its "applications" and "freelancerApplications" collections.
type legacyApplication struct {
	Name                    string  `json:"name"`
	Email                   string  `json:"email"`
	ProjectTitle            string  `json:"projectTitle"`
	ProposedAmount          float64 `json:"proposedAmount"`
	Deadline                string  `json:"deadline"`
	Reason                  string  `json:"reason"`
	Status                  string  `json:"status"`
	AppliedAt               string  `json:"appliedAt"`
	ProjectStatus           string  `json:"projectStatus"`
	ProposedStatus          string  `json:"proposedStatus"`
	AwaitingApproval        bool    `json:"awaitingApproval"`
	ApprovedByClient        bool    `json:"approvedByClient"`
	ClientRejected          bool    `json:"clientRejected"`
	ProposalRejectionReason string  `json:"proposalRejectionReason"`
	RejectionReason         string  `json:"rejectionReason"`
	EarningsAdded           bool    `json:"earningsAdded"`
	Rated                   bool    `json:"rated"`
	ClientRating            int     `json:"clientRating"`
	FreelancerRating        int     `json:"freelancerRating"`
	FreelancerReview        string  `json:"freelancerReview"`
}

// Divergence reports a key where the two legacy collections disagree. The
// prototype wrote both copies independently, so divergence means an
// unserialized write happened; such records are skipped, not guessed at.
type Divergence struct {
	ProjectTitle    string
	FreelancerEmail string
	Fields          []string
}

func (l legacyApplication) key() string {
	return l.ProjectTitle + "\x00" + l.Email
}

func (l legacyApplication) state() NegotiationState {
	switch l.Status {
	case "Rejected":
		return StateRejected
	case "Accepted":
		if l.AwaitingApproval {
			return StateProposalAwaiting
		}
		if l.ClientRejected {
			return StateProposalRejected
		}
		return StateAccepted
	default:
		return StatePending
	}
}

func (l legacyApplication) diff(other legacyApplication) []string {
	var fields []string
	if l.Status != other.Status {
		fields = append(fields, "status")
	}
	if l.ProjectStatus != other.ProjectStatus {
		fields = append(fields, "projectStatus")
	}
	if l.ProposedStatus != other.ProposedStatus {
		fields = append(fields, "proposedStatus")
	}
	if l.AwaitingApproval != other.AwaitingApproval {
		fields = append(fields, "awaitingApproval")
	}
	if l.ClientRejected != other.ClientRejected {
		fields = append(fields, "clientRejected")
	}
	if l.ApprovedByClient != other.ApprovedByClient {
		fields = append(fields, "approvedByClient")
	}
	if l.ProposalRejectionReason != other.ProposalRejectionReason {
		fields = append(fields, "proposalRejectionReason")
	}
	if l.RejectionReason != other.RejectionReason {
		fields = append(fields, "rejectionReason")
	}
	if l.EarningsAdded != other.EarningsAdded {
		fields = append(fields, "earningsAdded")
	}
	if l.Rated != other.Rated {
		fields = append(fields, "rated")
	}
	return fields
}

func (l legacyApplication) toApplication() Application {
	appliedAt, err := time.Parse(time.RFC3339, l.AppliedAt)
	if err != nil {
		appliedAt = time.Now()
	}
	projectStatus := l.ProjectStatus
	if projectStatus == "" {
		projectStatus = ProjectPending
	}
	return Application{
		ProjectTitle:            l.ProjectTitle,
		FreelancerEmail:         l.Email,
		FreelancerName:          l.Name,
		ProposedAmount:          int64(l.ProposedAmount),
		Deadline:                l.Deadline,
		Pitch:                   l.Reason,
		State:                   l.state(),
		ProjectStatus:           projectStatus,
		ProposedStatus:          l.ProposedStatus,
		ProposalRejectionReason: l.ProposalRejectionReason,
		RejectionReason:         l.RejectionReason,
		ApprovedByClient:        l.ApprovedByClient,
		EarningsAdded:           l.EarningsAdded,
		Rated:                   l.Rated,
		ClientRating:            l.ClientRating,
		FreelancerRating:        l.FreelancerRating,
		FreelancerReview:        l.FreelancerReview,
		AppliedAt:               appliedAt,
	}
}

// ParseLegacySnapshot merges the old dual-collection layout into single
// records. Both copies of a key must be field-identical on shared fields;
// keys where they disagree come back as divergences and are excluded.
func ParseLegacySnapshot(clientJSON, freelancerJSON []byte) ([]Application, []Divergence, error) {
	var clientApps, freelancerApps []legacyApplication
	if len(clientJSON) > 0 {
		if err := json.Unmarshal(clientJSON, &clientApps); err != nil {
			return nil, nil, fmt.Errorf("parse client collection: %w", err)
		}
	}
	if len(freelancerJSON) > 0 {
		if err := json.Unmarshal(freelancerJSON, &freelancerApps); err != nil {
			return nil, nil, fmt.Errorf("parse freelancer collection: %w", err)
		}
	}

	freelancerByKey := make(map[string]legacyApplication, len(freelancerApps))
	for _, app := range freelancerApps {
		freelancerByKey[app.key()] = app
	}

	var merged []Application
	var divergences []Divergence
	seen := make(map[string]bool, len(clientApps))
	for _, clientApp := range clientApps {
		seen[clientApp.key()] = true
		counterpart, ok := freelancerByKey[clientApp.key()]
		if ok {
			if fields := clientApp.diff(counterpart); len(fields) > 0 {
				divergences = append(divergences, Divergence{
					ProjectTitle:    clientApp.ProjectTitle,
					FreelancerEmail: clientApp.Email,
					Fields:          fields,
				})
				continue
			}
		}
		merged = append(merged, clientApp.toApplication())
	}
	for _, app := range freelancerApps {
		if !seen[app.key()] {
			merged = append(merged, app.toApplication())
		}
	}
	return merged, divergences, nil
}

// ImportLegacySnapshot loads a merged legacy snapshot into the authoritative
// store. Existing records are left untouched.
func (s *PostgresStore) ImportLegacySnapshot(ctx context.Context, clientJSON, freelancerJSON []byte) (int, []Divergence, error) {
	merged, divergences, err := ParseLegacySnapshot(clientJSON, freelancerJSON)
	if err != nil {
		return 0, nil, err
	}

	imported := 0
	for _, app := range merged {
		result, err := s.db.ExecContext(ctx, `
			INSERT INTO applications (
				project_title, freelancer_email, freelancer_name, proposed_amount, deadline, pitch,
				state, project_status, proposed_status, proposal_rejection_reason, rejection_reason,
				approved_by_client, earnings_added, rated, client_rating, freelancer_rating,
				freelancer_review, applied_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
			ON CONFLICT (project_title, freelancer_email) DO NOTHING
		`, app.ProjectTitle, app.FreelancerEmail, app.FreelancerName, app.ProposedAmount,
			app.Deadline, app.Pitch, app.State, app.ProjectStatus, app.ProposedStatus,
			app.ProposalRejectionReason, app.RejectionReason, app.ApprovedByClient,
			app.EarningsAdded, app.Rated, app.ClientRating, app.FreelancerRating,
			app.FreelancerReview, app.AppliedAt)
		if err != nil {
			return imported, divergences, fmt.Errorf("import application: %w", err)
		}
		if affected, err := result.RowsAffected(); err == nil && affected > 0 {
			imported++
		}
	}
	return imported, divergences, nil
}
