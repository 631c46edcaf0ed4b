// Package negotiation implements the client/freelancer application state
// machine as pure transition functions. Callers load a record, apply a
// transition, and persist the result through the store's CAS write path.
package negotiation

import (
	"errors"
	"strings"
	"time"

	"gigboard/api/internal/store"
)

var (
	ErrDuplicatePending    = errors.New("a pending application already exists for this project")
	ErrAlreadyAccepted     = errors.New("application already accepted")
	ErrAlreadyCompleted    = errors.New("project already completed")
	ErrNoChangeProposed    = errors.New("proposed status matches the current project status")
	ErrInvalidStatus       = errors.New("unknown project status")
	ErrNotPending          = errors.New("application is not pending")
	ErrNotAccepted         = errors.New("application is not accepted")
	ErrNotAwaitingApproval = errors.New("no proposal awaiting approval")
	ErrNotCompleted        = errors.New("project is not completed")
	ErrAlreadyRated        = errors.New("already rated")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5 stars")
	ErrReasonRequired      = errors.New("a reason is required")
	ErrNotArchivable       = errors.New("only rejected or completed-and-rated applications can be archived")
)

var allowedProjectStatuses = map[string]struct{}{
	store.ProjectActive:    {},
	store.ProjectPending:   {},
	store.ProjectCompleted: {},
}

func ValidProjectStatus(status string) bool {
	_, ok := allowedProjectStatuses[status]
	return ok
}

type SubmitInput struct {
	FreelancerName  string
	FreelancerEmail string
	ProposedAmount  int64
	Deadline        string
	Pitch           string
}

// Submit creates a fresh pending application against a project. An existing
// record for the same (project, freelancer) pair blocks resubmission unless
// it was rejected, in which case the new application supersedes it and the
// old rejection reason is dropped.
func Submit(existing *store.Application, project store.Project, input SubmitInput, now time.Time) (store.Application, error) {
	if existing != nil {
		switch existing.State {
		case store.StatePending:
			return store.Application{}, ErrDuplicatePending
		case store.StateRejected:
			// re-apply allowed
		default:
			return store.Application{}, ErrAlreadyAccepted
		}
	}
	return store.Application{
		ProjectTitle:    project.Title,
		FreelancerEmail: input.FreelancerEmail,
		FreelancerName:  input.FreelancerName,
		ProposedAmount:  input.ProposedAmount,
		Deadline:        input.Deadline,
		Pitch:           input.Pitch,
		State:           store.StatePending,
		ProjectStatus:   project.Status,
		AppliedAt:       now,
	}, nil
}

// Withdraw is only valid while the client has not acted on the application.
func Withdraw(app store.Application) error {
	if app.State != store.StatePending {
		return ErrNotPending
	}
	return nil
}

// Accept moves a pending application to accepted and activates the project
// unless it already ran to completion.
func Accept(app store.Application) (store.Application, error) {
	if app.State != store.StatePending {
		if app.State == store.StateRejected {
			return store.Application{}, ErrNotPending
		}
		return store.Application{}, ErrAlreadyAccepted
	}
	app.State = store.StateAccepted
	if app.ProjectStatus != store.ProjectCompleted {
		app.ProjectStatus = store.ProjectActive
	}
	app.RejectionReason = ""
	return app, nil
}

// Reject requires a reason and never applies to an accepted application.
func Reject(app store.Application, reason string) (store.Application, error) {
	if strings.TrimSpace(reason) == "" {
		return store.Application{}, ErrReasonRequired
	}
	switch app.State {
	case store.StateAccepted, store.StateProposalAwaiting, store.StateProposalRejected:
		return store.Application{}, ErrAlreadyAccepted
	}
	app.State = store.StateRejected
	app.RejectionReason = strings.TrimSpace(reason)
	return app, nil
}

// ProposeStatus starts a status-change proposal. Re-proposing after a client
// rejection is allowed and clears the recorded rejection.
func ProposeStatus(app store.Application, newStatus string) (store.Application, error) {
	if !ValidProjectStatus(newStatus) {
		return store.Application{}, ErrInvalidStatus
	}
	switch app.State {
	case store.StateProposalAwaiting:
		return store.Application{}, ErrNotAccepted
	case store.StateAccepted, store.StateProposalRejected:
	default:
		return store.Application{}, ErrNotAccepted
	}
	if newStatus == store.ProjectCompleted && app.ProjectStatus == store.ProjectCompleted {
		return store.Application{}, ErrAlreadyCompleted
	}
	if newStatus == app.ProjectStatus && app.State != store.StateProposalRejected {
		return store.Application{}, ErrNoChangeProposed
	}
	app.State = store.StateProposalAwaiting
	app.ProposedStatus = newStatus
	app.ProposalRejectionReason = ""
	return app, nil
}

// Approval describes the side effects an approved proposal requires.
type Approval struct {
	NewProjectStatus string
	Completed        bool
	// CreditEarnings is true the first time a project completes for this
	// application; the earnings ledger credit must happen exactly once.
	CreditEarnings bool
	// RatingPromptArmed is true when the freelancer becomes eligible for the
	// one-time rating prompt.
	RatingPromptArmed bool
}

// ApproveProposal applies the proposed status and reports which one-time
// side effects fire.
func ApproveProposal(app store.Application) (store.Application, Approval, error) {
	if app.State != store.StateProposalAwaiting {
		return store.Application{}, Approval{}, ErrNotAwaitingApproval
	}
	newStatus := app.ProposedStatus
	if newStatus == "" {
		newStatus = app.ProjectStatus
	}
	app.ProjectStatus = newStatus
	app.State = store.StateAccepted
	app.ApprovedByClient = true
	app.ProposedStatus = ""
	app.ProposalRejectionReason = ""

	approval := Approval{NewProjectStatus: newStatus}
	if newStatus == store.ProjectCompleted {
		approval.Completed = true
		if !app.EarningsAdded {
			app.EarningsAdded = true
			approval.CreditEarnings = true
		}
		if !app.Rated {
			approval.RatingPromptArmed = true
		}
	}
	return app, approval, nil
}

// RejectProposal records the client's rejection and reason; the freelancer
// may re-propose.
func RejectProposal(app store.Application, reason string) (store.Application, error) {
	if app.State != store.StateProposalAwaiting {
		return store.Application{}, ErrNotAwaitingApproval
	}
	if strings.TrimSpace(reason) == "" {
		return store.Application{}, ErrReasonRequired
	}
	app.State = store.StateProposalRejected
	app.ProposalRejectionReason = strings.TrimSpace(reason)
	app.ProposedStatus = ""
	return app, nil
}

// SubmitFreelancerRating records the freelancer's one-time rating of the
// client after completion.
func SubmitFreelancerRating(app store.Application, stars int, review string) (store.Application, error) {
	if app.ProjectStatus != store.ProjectCompleted {
		return store.Application{}, ErrNotCompleted
	}
	if app.Rated {
		return store.Application{}, ErrAlreadyRated
	}
	if stars < 1 || stars > 5 {
		return store.Application{}, ErrInvalidRating
	}
	app.Rated = true
	app.FreelancerRating = stars
	app.FreelancerReview = strings.TrimSpace(review)
	return app, nil
}

// SubmitClientRating records the client's one-time rating of the freelancer.
func SubmitClientRating(app store.Application, stars int) (store.Application, error) {
	if app.ProjectStatus != store.ProjectCompleted {
		return store.Application{}, ErrNotCompleted
	}
	if app.ClientRating > 0 {
		return store.Application{}, ErrAlreadyRated
	}
	if stars < 1 || stars > 5 {
		return store.Application{}, ErrInvalidRating
	}
	app.ClientRating = stars
	return app, nil
}

// Archivable gates the move to trash: rejected applications, or completed
// ones the freelancer has already rated.
func Archivable(app store.Application) error {
	if app.State == store.StateRejected {
		return nil
	}
	if app.ProjectStatus == store.ProjectCompleted && app.Rated {
		return nil
	}
	return ErrNotArchivable
}
