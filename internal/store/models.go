package store

import "time"

// NegotiationState is the single authoritative state of an application.
// The legacy prototype tracked this with independent booleans
// (awaitingApproval, clientRejected, approvedByClient); collapsing them into
// one enum makes illegal flag combinations unrepresentable.
type NegotiationState string

const (
	StatePending          NegotiationState = "PENDING"
	StateAccepted         NegotiationState = "ACCEPTED"
	StateRejected         NegotiationState = "REJECTED"
	StateProposalAwaiting NegotiationState = "PROPOSAL_AWAITING"
	StateProposalRejected NegotiationState = "PROPOSAL_REJECTED"
)

// Project statuses as shown on both dashboards.
const (
	ProjectActive    = "Active"
	ProjectPending   = "Pending"
	ProjectCompleted = "Completed"
)

type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

type Project struct {
	Title       string
	ClientEmail string
	ClientName  string
	Description string
	Budget      int64
	Deadline    string
	Skills      string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Application is identified by (ProjectTitle, FreelancerEmail). Version is
// bumped on every write and guards compare-and-swap updates.
type Application struct {
	ProjectTitle    string
	FreelancerEmail string
	FreelancerName  string
	ProposedAmount  int64
	Deadline        string
	Pitch           string
	State           NegotiationState
	ProjectStatus   string
	ProposedStatus  string
	// RejectionReason is set when the client rejects the application itself;
	// ProposalRejectionReason when the client rejects a status proposal.
	ProposalRejectionReason string
	RejectionReason         string
	// ApprovedByClient flips the first time the client approves a status
	// proposal and stays set; a plain accept does not set it.
	ApprovedByClient bool
	EarningsAdded    bool
	Rated            bool
	ClientRating     int
	FreelancerRating int
	FreelancerReview string
	AppliedAt        time.Time
	UpdatedAt        time.Time
	Version          int64
}

// ArchivedApplication is a soft-deleted application. Restorable until purged.
type ArchivedApplication struct {
	Application
	ArchivedAt time.Time
}

type Notification struct {
	ID           int64
	Recipient    string
	Title        string
	Body         string
	Type         string
	ProjectTitle string
	IsRead       bool
	CreatedAt    time.Time
}

// EarningsEntry is one credited project payout. The unique
// (freelancer_email, project_title) constraint makes the credit idempotent.
type EarningsEntry struct {
	ID              int64
	FreelancerEmail string
	ProjectTitle    string
	Amount          int64
	CreditedAt      time.Time
}
