package events

import (
	"context"
	"fmt"
	"log"

	"gigboard/api/internal/store"
)

type notificationStore interface {
	InsertNotification(context.Context, store.Notification) error
}

// Notifier turns domain events into dashboard notifications. It has no
// knowledge of the UI; it only decides recipient, title, and body.
type Notifier struct {
	store notificationStore
}

func NewNotifier(notifications notificationStore) *Notifier {
	return &Notifier{store: notifications}
}

// Handle implements the bus Handler signature.
func (n *Notifier) Handle(ctx context.Context, event Event) {
	notification, ok := n.compose(event)
	if !ok {
		return
	}
	if err := n.store.InsertNotification(ctx, notification); err != nil {
		log.Printf("events: store notification for %s: %v", event.Kind, err)
	}
}

func (n *Notifier) compose(event Event) (store.Notification, bool) {
	base := store.Notification{
		ProjectTitle: event.ProjectTitle,
		Type:         "info",
	}
	switch event.Kind {
	case ApplicationSubmitted:
		base.Recipient = event.ClientEmail
		base.Title = "New Application"
		base.Body = fmt.Sprintf("A freelancer applied to %q.", event.ProjectTitle)
		base.Type = "application"
	case ApplicationWithdrawn:
		base.Recipient = event.ClientEmail
		base.Title = "Application Withdrawn"
		base.Body = fmt.Sprintf("The application for %q was withdrawn.", event.ProjectTitle)
	case ApplicationAccepted:
		base.Recipient = event.FreelancerEmail
		base.Title = "Application Accepted"
		base.Body = fmt.Sprintf("Your application for %q was accepted.", event.ProjectTitle)
		base.Type = "success"
	case ApplicationRejected:
		base.Recipient = event.FreelancerEmail
		base.Title = "Application Rejected"
		base.Body = fmt.Sprintf("Your application for %q was rejected: %s", event.ProjectTitle, event.Reason)
		base.Type = "warning"
	case StatusProposed:
		base.Recipient = event.ClientEmail
		base.Title = "New Proposal"
		base.Body = fmt.Sprintf("The freelancer on %q requests a status change to %s.", event.ProjectTitle, event.ProposedStatus)
		base.Type = "application"
	case ProposalApproved:
		base.Recipient = event.FreelancerEmail
		base.Title = "Proposal Approved"
		base.Body = fmt.Sprintf("%q is now %s.", event.ProjectTitle, event.ProjectStatus)
		base.Type = "success"
	case ProposalRejected:
		base.Recipient = event.FreelancerEmail
		base.Title = "Proposal Rejected"
		base.Body = fmt.Sprintf("Your status proposal for %q was rejected: %s", event.ProjectTitle, event.Reason)
		base.Type = "warning"
	case EarningsCredited:
		base.Recipient = event.FreelancerEmail
		base.Title = "Earnings Credited"
		base.Body = fmt.Sprintf("%d was credited for %q.", event.Amount, event.ProjectTitle)
		base.Type = "success"
	case ApplicationArchived:
		base.Recipient = event.FreelancerEmail
		base.Title = "Moved to Trash"
		base.Body = fmt.Sprintf("The application for %q can be restored from the Trash section.", event.ProjectTitle)
	case ApplicationRestored:
		base.Recipient = event.FreelancerEmail
		base.Title = "Restored"
		base.Body = fmt.Sprintf("The application for %q is back in your Applications list.", event.ProjectTitle)
		base.Type = "success"
	case ApplicationPurged:
		base.Recipient = event.FreelancerEmail
		base.Title = "Permanently Deleted"
		base.Body = fmt.Sprintf("The archived application for %q was permanently deleted.", event.ProjectTitle)
		base.Type = "error"
	default:
		return store.Notification{}, false
	}
	if base.Recipient == "" {
		return store.Notification{}, false
	}
	return base, true
}
