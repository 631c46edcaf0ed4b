package negotiation

import (
	"errors"
	"testing"
	"time"

	"gigboard/api/internal/store"
)

var testProject = store.Project{
	Title:       "Landing Page",
	ClientEmail: "client@example.com",
	Budget:      500,
	Status:      store.ProjectPending,
}

func pendingApp() store.Application {
	return store.Application{
		ProjectTitle:    "Landing Page",
		FreelancerEmail: "dev@example.com",
		FreelancerName:  "Dev",
		ProposedAmount:  500,
		State:           store.StatePending,
		ProjectStatus:   store.ProjectPending,
	}
}

func acceptedApp() store.Application {
	app := pendingApp()
	app.State = store.StateAccepted
	app.ProjectStatus = store.ProjectActive
	return app
}

func TestSubmit(t *testing.T) {
	input := SubmitInput{
		FreelancerName:  "Dev",
		FreelancerEmail: "dev@example.com",
		ProposedAmount:  500,
		Deadline:        "2026-10-01",
		Pitch:           "I build landing pages",
	}

	app, err := Submit(nil, testProject, input, time.Now())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if app.State != store.StatePending {
		t.Errorf("expected PENDING, got %s", app.State)
	}
	if app.ProjectStatus != testProject.Status {
		t.Errorf("expected project status %q, got %q", testProject.Status, app.ProjectStatus)
	}

	// A second submit while the first is still pending must fail.
	existing := pendingApp()
	if _, err := Submit(&existing, testProject, input, time.Now()); !errors.Is(err, ErrDuplicatePending) {
		t.Errorf("expected ErrDuplicatePending, got %v", err)
	}

	accepted := acceptedApp()
	if _, err := Submit(&accepted, testProject, input, time.Now()); !errors.Is(err, ErrAlreadyAccepted) {
		t.Errorf("expected ErrAlreadyAccepted, got %v", err)
	}

	// Re-apply after rejection is allowed and drops the old reason.
	rejected := pendingApp()
	rejected.State = store.StateRejected
	rejected.RejectionReason = "budget too high"
	fresh, err := Submit(&rejected, testProject, input, time.Now())
	if err != nil {
		t.Fatalf("Submit after rejection: %v", err)
	}
	if fresh.RejectionReason != "" {
		t.Errorf("expected rejection reason cleared, got %q", fresh.RejectionReason)
	}
	if fresh.State != store.StatePending {
		t.Errorf("expected PENDING, got %s", fresh.State)
	}
}

func TestWithdraw(t *testing.T) {
	if err := Withdraw(pendingApp()); err != nil {
		t.Errorf("Withdraw pending: %v", err)
	}
	if err := Withdraw(acceptedApp()); !errors.Is(err, ErrNotPending) {
		t.Errorf("expected ErrNotPending, got %v", err)
	}
}

func TestAccept(t *testing.T) {
	app, err := Accept(pendingApp())
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if app.State != store.StateAccepted {
		t.Errorf("expected ACCEPTED, got %s", app.State)
	}
	if app.ProjectStatus != store.ProjectActive {
		t.Errorf("expected Active, got %s", app.ProjectStatus)
	}

	completed := pendingApp()
	completed.ProjectStatus = store.ProjectCompleted
	app, err = Accept(completed)
	if err != nil {
		t.Fatalf("Accept completed: %v", err)
	}
	if app.ProjectStatus != store.ProjectCompleted {
		t.Errorf("completed project must not revert to Active, got %s", app.ProjectStatus)
	}

	if _, err := Accept(acceptedApp()); !errors.Is(err, ErrAlreadyAccepted) {
		t.Errorf("expected ErrAlreadyAccepted, got %v", err)
	}
}

func TestReject(t *testing.T) {
	app, err := Reject(pendingApp(), "insufficient portfolio")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if app.State != store.StateRejected || app.RejectionReason != "insufficient portfolio" {
		t.Errorf("unexpected record after reject: %+v", app)
	}

	if _, err := Reject(pendingApp(), "   "); !errors.Is(err, ErrReasonRequired) {
		t.Errorf("expected ErrReasonRequired, got %v", err)
	}

	// An accepted application can never be rejected, in any accepted phase.
	for _, state := range []store.NegotiationState{store.StateAccepted, store.StateProposalAwaiting, store.StateProposalRejected} {
		app := acceptedApp()
		app.State = state
		if _, err := Reject(app, "nope"); !errors.Is(err, ErrAlreadyAccepted) {
			t.Errorf("state %s: expected ErrAlreadyAccepted, got %v", state, err)
		}
	}
}

func TestProposeStatus(t *testing.T) {
	app, err := ProposeStatus(acceptedApp(), store.ProjectCompleted)
	if err != nil {
		t.Fatalf("ProposeStatus: %v", err)
	}
	if app.State != store.StateProposalAwaiting || app.ProposedStatus != store.ProjectCompleted {
		t.Errorf("unexpected record after propose: %+v", app)
	}

	// Double-propose while one is awaiting.
	if _, err := ProposeStatus(app, store.ProjectPending); err == nil {
		t.Error("expected error proposing while awaiting approval")
	}

	// Proposing the current status is a no-op request.
	if _, err := ProposeStatus(acceptedApp(), store.ProjectActive); !errors.Is(err, ErrNoChangeProposed) {
		t.Errorf("expected ErrNoChangeProposed, got %v", err)
	}

	// Re-proposing Completed on an already completed project.
	done := acceptedApp()
	done.ProjectStatus = store.ProjectCompleted
	if _, err := ProposeStatus(done, store.ProjectCompleted); !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("expected ErrAlreadyCompleted, got %v", err)
	}

	// Pending applications cannot propose.
	if _, err := ProposeStatus(pendingApp(), store.ProjectCompleted); !errors.Is(err, ErrNotAccepted) {
		t.Errorf("expected ErrNotAccepted, got %v", err)
	}

	// A status outside the known set is invalid input, not a no-op request.
	for _, status := range []string{"Done", "completed", ""} {
		if _, err := ProposeStatus(acceptedApp(), status); !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("status %q: expected ErrInvalidStatus, got %v", status, err)
		}
	}
}

func TestRejectProposalThenRepropose(t *testing.T) {
	app, err := ProposeStatus(acceptedApp(), store.ProjectCompleted)
	if err != nil {
		t.Fatalf("ProposeStatus: %v", err)
	}

	app, err = RejectProposal(app, "insufficient docs")
	if err != nil {
		t.Fatalf("RejectProposal: %v", err)
	}
	if app.State != store.StateProposalRejected {
		t.Errorf("expected PROPOSAL_REJECTED, got %s", app.State)
	}
	if app.ProposalRejectionReason != "insufficient docs" {
		t.Errorf("expected reason recorded, got %q", app.ProposalRejectionReason)
	}
	if app.ProposedStatus != "" {
		t.Errorf("expected proposed status cleared, got %q", app.ProposedStatus)
	}

	// Re-proposing the same status is allowed and clears the rejection.
	app, err = ProposeStatus(app, store.ProjectCompleted)
	if err != nil {
		t.Fatalf("re-propose: %v", err)
	}
	if app.State != store.StateProposalAwaiting || app.ProposalRejectionReason != "" {
		t.Errorf("expected rejection cleared on re-propose: %+v", app)
	}

	if _, err := RejectProposal(acceptedApp(), "nothing to reject"); !errors.Is(err, ErrNotAwaitingApproval) {
		t.Errorf("expected ErrNotAwaitingApproval, got %v", err)
	}
	awaiting, _ := ProposeStatus(acceptedApp(), store.ProjectCompleted)
	if _, err := RejectProposal(awaiting, ""); !errors.Is(err, ErrReasonRequired) {
		t.Errorf("expected ErrReasonRequired, got %v", err)
	}
}

func TestApproveProposal(t *testing.T) {
	awaiting, err := ProposeStatus(acceptedApp(), store.ProjectCompleted)
	if err != nil {
		t.Fatalf("ProposeStatus: %v", err)
	}

	app, approval, err := ApproveProposal(awaiting)
	if err != nil {
		t.Fatalf("ApproveProposal: %v", err)
	}
	if app.ProjectStatus != store.ProjectCompleted || app.State != store.StateAccepted {
		t.Errorf("unexpected record after approve: %+v", app)
	}
	if !approval.Completed || !approval.CreditEarnings || !approval.RatingPromptArmed {
		t.Errorf("expected all completion side effects, got %+v", approval)
	}
	if !app.EarningsAdded {
		t.Error("expected earningsAdded set")
	}
	if !app.ApprovedByClient {
		t.Error("expected approvedByClient set on proposal approval")
	}

	// A plain accept never sets the flag; only an approved proposal does.
	plain, err := Accept(pendingApp())
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if plain.ApprovedByClient {
		t.Error("plain accept must not set approvedByClient")
	}

	// A second (erroneous) approve after re-proposing the same completion must
	// not credit earnings again.
	app.State = store.StateProposalAwaiting
	app.ProposedStatus = store.ProjectCompleted
	app.ProjectStatus = store.ProjectActive
	_, approval, err = ApproveProposal(app)
	if err != nil {
		t.Fatalf("second ApproveProposal: %v", err)
	}
	if approval.CreditEarnings {
		t.Error("earnings credit must be one-time")
	}

	if _, _, err := ApproveProposal(acceptedApp()); !errors.Is(err, ErrNotAwaitingApproval) {
		t.Errorf("expected ErrNotAwaitingApproval, got %v", err)
	}
}

func TestSubmitFreelancerRating(t *testing.T) {
	completed := acceptedApp()
	completed.ProjectStatus = store.ProjectCompleted

	for _, stars := range []int{0, 6, -1} {
		if _, err := SubmitFreelancerRating(completed, stars, ""); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("stars=%d: expected ErrInvalidRating, got %v", stars, err)
		}
	}
	for stars := 1; stars <= 5; stars++ {
		app, err := SubmitFreelancerRating(completed, stars, "great client")
		if err != nil {
			t.Fatalf("stars=%d: %v", stars, err)
		}
		if !app.Rated || app.FreelancerRating != stars {
			t.Errorf("stars=%d: unexpected record %+v", stars, app)
		}
	}

	rated, _ := SubmitFreelancerRating(completed, 5, "great")
	if _, err := SubmitFreelancerRating(rated, 4, "again"); !errors.Is(err, ErrAlreadyRated) {
		t.Errorf("expected ErrAlreadyRated, got %v", err)
	}

	if _, err := SubmitFreelancerRating(acceptedApp(), 5, ""); !errors.Is(err, ErrNotCompleted) {
		t.Errorf("expected ErrNotCompleted, got %v", err)
	}
}

func TestSubmitClientRating(t *testing.T) {
	completed := acceptedApp()
	completed.ProjectStatus = store.ProjectCompleted

	app, err := SubmitClientRating(completed, 4)
	if err != nil {
		t.Fatalf("SubmitClientRating: %v", err)
	}
	if app.ClientRating != 4 {
		t.Errorf("expected clientRating=4, got %d", app.ClientRating)
	}
	if _, err := SubmitClientRating(app, 5); !errors.Is(err, ErrAlreadyRated) {
		t.Errorf("expected ErrAlreadyRated, got %v", err)
	}
}

func TestArchivable(t *testing.T) {
	rejected := pendingApp()
	rejected.State = store.StateRejected
	if err := Archivable(rejected); err != nil {
		t.Errorf("rejected should be archivable: %v", err)
	}

	completedRated := acceptedApp()
	completedRated.ProjectStatus = store.ProjectCompleted
	completedRated.Rated = true
	if err := Archivable(completedRated); err != nil {
		t.Errorf("completed+rated should be archivable: %v", err)
	}

	completedUnrated := acceptedApp()
	completedUnrated.ProjectStatus = store.ProjectCompleted
	if err := Archivable(completedUnrated); !errors.Is(err, ErrNotArchivable) {
		t.Errorf("expected ErrNotArchivable, got %v", err)
	}
	if err := Archivable(pendingApp()); !errors.Is(err, ErrNotArchivable) {
		t.Errorf("expected ErrNotArchivable, got %v", err)
	}
}
