package events

import (
	"time"

	"gigboard/api/internal/store"
	"gigboard/api/internal/util"
)

// ChangeDetector diffs successive snapshots of the application collection
// and emits events for transitions made by another actor (e.g. a second
// process writing directly to the store). Each Scan re-arms against the
// snapshot it was given, so the same transition is never reported twice.
// Events come out in collection iteration order; there is no ordering
// guarantee across fields changed in the same scan.
type ChangeDetector struct {
	previous map[string]store.Application
}

func NewChangeDetector() *ChangeDetector {
	return &ChangeDetector{previous: make(map[string]store.Application)}
}

func snapshotKey(app store.Application) string {
	return app.ProjectTitle + "\x00" + app.FreelancerEmail
}

func (d *ChangeDetector) Scan(current []store.Application) []Event {
	var detected []Event
	now := time.Now()

	next := make(map[string]store.Application, len(current))
	for _, app := range current {
		key := snapshotKey(app)
		next[key] = app
		prev, known := d.previous[key]
		if !known {
			continue
		}
		detected = append(detected, diffApplications(prev, app, now)...)
	}
	d.previous = next
	return detected
}

func diffApplications(prev, curr store.Application, now time.Time) []Event {
	var out []Event
	base := func(kind Kind) Event {
		return Event{
			ID:              util.NewID("evt"),
			Kind:            kind,
			ProjectTitle:    curr.ProjectTitle,
			FreelancerEmail: curr.FreelancerEmail,
			OccurredAt:      now,
		}
	}

	if prev.State == store.StatePending && curr.State == store.StateAccepted {
		out = append(out, base(ApplicationAccepted))
	}
	if prev.State == store.StatePending && curr.State == store.StateRejected {
		event := base(ApplicationRejected)
		event.Reason = curr.RejectionReason
		out = append(out, event)
	}
	if prev.State != store.StateProposalAwaiting && curr.State == store.StateProposalAwaiting {
		event := base(StatusProposed)
		event.ProposedStatus = curr.ProposedStatus
		out = append(out, event)
	}
	approved := prev.State == store.StateProposalAwaiting && curr.State == store.StateAccepted
	if approved {
		event := base(ProposalApproved)
		event.ProjectStatus = curr.ProjectStatus
		out = append(out, event)
	}
	if prev.State == store.StateProposalAwaiting && curr.State == store.StateProposalRejected {
		event := base(ProposalRejected)
		event.Reason = curr.ProposalRejectionReason
		out = append(out, event)
	}
	if prev.ProjectStatus != curr.ProjectStatus {
		if curr.ProjectStatus == store.ProjectCompleted {
			event := base(ProjectCompleted)
			event.ProjectStatus = curr.ProjectStatus
			out = append(out, event)
		} else if !approved {
			event := base(ProposalApproved)
			event.ProjectStatus = curr.ProjectStatus
			out = append(out, event)
		}
	}
	return out
}
