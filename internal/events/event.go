// Package events carries typed domain events between the negotiation service
// and its observers. Every mutating operation publishes one or more events;
// the dashboards react to events instead of diffing storage snapshots.
package events

import "time"

type Kind string

const (
	ApplicationSubmitted Kind = "application.submitted"
	ApplicationWithdrawn Kind = "application.withdrawn"
	ApplicationAccepted  Kind = "application.accepted"
	ApplicationRejected  Kind = "application.rejected"
	StatusProposed       Kind = "proposal.submitted"
	ProposalApproved     Kind = "proposal.approved"
	ProposalRejected     Kind = "proposal.rejected"
	ProjectCompleted     Kind = "project.completed"
	EarningsCredited     Kind = "earnings.credited"
	RatingSubmitted      Kind = "rating.submitted"
	ApplicationArchived  Kind = "application.archived"
	ApplicationRestored  Kind = "application.restored"
	ApplicationPurged    Kind = "application.purged"
)

type Event struct {
	ID              string    `json:"id"`
	Kind            Kind      `json:"kind"`
	ProjectTitle    string    `json:"projectTitle"`
	FreelancerEmail string    `json:"freelancerEmail"`
	ClientEmail     string    `json:"clientEmail,omitempty"`
	Actor           string    `json:"actor,omitempty"`
	ProjectStatus   string    `json:"projectStatus,omitempty"`
	ProposedStatus  string    `json:"proposedStatus,omitempty"`
	Reason          string    `json:"reason,omitempty"`
	Amount          int64     `json:"amount,omitempty"`
	// Origin identifies the publishing process so a fanout transport can
	// skip re-delivering a process's own events back to it.
	Origin     string    `json:"origin,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
