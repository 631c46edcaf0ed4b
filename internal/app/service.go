package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"gigboard/api/internal/auth"
	"gigboard/api/internal/authpw"
	"gigboard/api/internal/config"
	"gigboard/api/internal/email"
	"gigboard/api/internal/events"
	"gigboard/api/internal/export"
	"gigboard/api/internal/history"
	"gigboard/api/internal/negotiation"
	"gigboard/api/internal/search"
	"gigboard/api/internal/session"
	"gigboard/api/internal/store"
	"gigboard/api/internal/util"
)

type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	Email        string
	UserName     string
	Role         string
	JTI          string
	ExpiresAt    time.Time
}

type ProjectInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Budget      int64  `json:"budget"`
	Deadline    string `json:"deadline"`
	Skills      string `json:"skills"`
}

type ApplicationInput struct {
	ProposedAmount int64  `json:"proposedAmount"`
	Deadline       string `json:"deadline"`
	Pitch          string `json:"pitch"`
}

// ApplicationView is the read-only projection served to both dashboards. The
// legacy booleans are derived from the authoritative state enum; they exist
// for the dashboard's benefit and are never written back.
type ApplicationView struct {
	ProjectTitle            string    `json:"projectTitle"`
	FreelancerEmail         string    `json:"email"`
	FreelancerName          string    `json:"name"`
	ProposedAmount          int64     `json:"proposedAmount"`
	Deadline                string    `json:"deadline"`
	Pitch                   string    `json:"reason"`
	State                   string    `json:"state"`
	Status                  string    `json:"status"`
	ProjectStatus           string    `json:"projectStatus"`
	ProposedStatus          string    `json:"proposedStatus,omitempty"`
	AwaitingApproval        bool      `json:"awaitingApproval"`
	ApprovedByClient        bool      `json:"approvedByClient"`
	ClientRejected          bool      `json:"clientRejected"`
	ProposalRejectionReason string    `json:"proposalRejectionReason,omitempty"`
	RejectionReason         string    `json:"rejectionReason,omitempty"`
	EarningsAdded           bool      `json:"earningsAdded"`
	Rated                   bool      `json:"rated"`
	ClientRating            int       `json:"clientRating,omitempty"`
	FreelancerRating        int       `json:"freelancerRating,omitempty"`
	FreelancerReview        string    `json:"freelancerReview,omitempty"`
	AppliedAt               time.Time `json:"appliedAt"`
	UpdatedAt               time.Time `json:"updatedAt"`
	Version                 int64     `json:"version"`
}

// ArchivedApplicationView adds the trash timestamp to the shared projection.
type ArchivedApplicationView struct {
	ApplicationView
	ArchivedAt time.Time `json:"archivedAt"`
}

type EarningsSummary struct {
	Total   int64                 `json:"total"`
	Entries []store.EarningsEntry `json:"entries"`
}

type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type dataStore interface {
	Ping(ctx context.Context) error

	InsertProject(context.Context, store.Project) error
	GetProject(context.Context, string) (store.Project, error)
	ListProjects(context.Context, string) ([]store.Project, error)
	UpdateProjectStatus(context.Context, string, string) error

	GetApplication(context.Context, string, string) (store.Application, error)
	InsertApplication(context.Context, store.Application) error
	ReplaceApplication(context.Context, store.Application) error
	UpdateApplicationCAS(context.Context, store.Application) error
	DeleteApplicationCAS(context.Context, string, string, int64) error
	ListApplicationsByProject(context.Context, string) ([]store.Application, error)
	ListApplicationsByFreelancer(context.Context, string) ([]store.Application, error)

	ArchiveApplication(context.Context, string, string, time.Time, int64) error
	RestoreApplication(context.Context, string, string) (store.Application, error)
	ListArchivedApplications(context.Context, string) ([]store.ArchivedApplication, error)
	PurgeArchivedApplications(context.Context, string, []string) (int, error)

	CreditEarnings(context.Context, string, string, int64) (bool, error)
	TotalEarnings(context.Context, string) (int64, error)
	ListEarnings(context.Context, string) ([]store.EarningsEntry, error)
	AverageClientRating(context.Context, string) (float64, int, error)

	ListNotifications(context.Context, string) ([]store.Notification, error)
	MarkNotificationRead(context.Context, string, int64) error
	MarkAllNotificationsRead(context.Context, string) error

	ImportLegacySnapshot(context.Context, []byte, []byte) (int, []store.Divergence, error)
}

type accountService interface {
	SignUp(ctx context.Context, req authpw.SignUpRequest) (store.User, error)
	SignIn(ctx context.Context, req authpw.SignInRequest) (store.User, error)
}

type sessionStore interface {
	SaveSession(ctx context.Context, tokenHash string, actor session.Actor, expiresAt time.Time) error
	LookupSession(ctx context.Context, tokenHash string) (session.Actor, error)
	RevokeSession(ctx context.Context, tokenHash string) error
}

type journalService interface {
	RecordTransition(projectTitle, freelancerEmail string, snap history.Snapshot, actor, message string) (history.Entry, error)
	History(projectTitle, freelancerEmail string, limit int) ([]history.Entry, error)
}

type mailerService interface {
	IsConfigured() bool
	SendApplicationDecision(to, userName, projectTitle string, accepted bool, reason string) error
}

type publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	cfg      config.Config
	store    dataStore
	accounts accountService
	sessions sessionStore
	bus      *events.Bus
	fanout   publisher
	journal  journalService
	mailer   mailerService
	search   *search.Service
	exports  *export.Service
}

// Options carries the optional collaborators. Nil fields disable the
// corresponding feature rather than failing startup.
type Options struct {
	Sessions *session.RedisStore
	Bus      *events.Bus
	Fanout   *events.RedisFanout
	Journal  *history.Service
	Mailer   *email.Service
	Search   *search.Service
	Exports  *export.Service
}

func New(cfg config.Config, dataStore *store.PostgresStore, opts Options) *Service {
	bus := opts.Bus
	if bus == nil {
		bus = events.NewBus()
	}

	s := &Service{
		cfg:      cfg,
		store:    dataStore,
		accounts: authpw.NewService(dataStore),
		bus:      bus,
		search:   opts.Search,
		exports:  opts.Exports,
	}
	if opts.Sessions != nil {
		s.sessions = opts.Sessions
	}
	if opts.Fanout != nil {
		s.fanout = opts.Fanout
	}
	if opts.Journal != nil {
		s.journal = opts.Journal
	}
	if opts.Mailer != nil {
		s.mailer = opts.Mailer
	}
	return s
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Auth

func (s *Service) SignUp(ctx context.Context, req authpw.SignUpRequest) (Session, error) {
	user, err := s.accounts.SignUp(ctx, req)
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) Login(ctx context.Context, emailAddr, password string) (Session, error) {
	user, err := s.accounts.SignIn(ctx, authpw.SignInRequest{Email: emailAddr, Password: password})
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	actor, err := s.sessions.LookupSession(ctx, tokenHash)
	if err != nil {
		return Session{}, err
	}
	if err := s.sessions.RevokeSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, store.User{
		ID:          actor.UserID,
		Email:       actor.Email,
		DisplayName: actor.DisplayName,
		Role:        actor.Role,
	})
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.JWTSecret), auth.Claims{
		Sub:   user.ID,
		Email: user.Email,
		Name:  user.DisplayName,
		Role:  user.Role,
		JTI:   jti,
		Exp:   expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.sessions.SaveSession(ctx, auth.HashToken(refresh), session.Actor{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		Email:        user.Email,
		UserName:     user.DisplayName,
		Role:         user.Role,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:     token,
		UserID:    claims.Sub,
		Email:     claims.Email,
		UserName:  claims.Name,
		Role:      claims.Role,
		JTI:       claims.JTI,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.sessions.RevokeSession(ctx, auth.HashToken(refreshToken))
}

func requireRole(sess Session, role string) error {
	if sess.Role != role {
		return domainError(http.StatusForbidden, "FORBIDDEN", fmt.Sprintf("this action requires the %s role", role), nil)
	}
	return nil
}

// Projects

func (s *Service) CreateProject(ctx context.Context, sess Session, input ProjectInput) (store.Project, error) {
	if err := requireRole(sess, auth.RoleClient); err != nil {
		return store.Project{}, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return store.Project{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "project title is required", nil)
	}
	if input.Budget <= 0 {
		return store.Project{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "budget must be positive", nil)
	}

	project := store.Project{
		Title:       title,
		ClientEmail: sess.Email,
		ClientName:  sess.UserName,
		Description: input.Description,
		Budget:      input.Budget,
		Deadline:    input.Deadline,
		Skills:      input.Skills,
		Status:      store.ProjectPending,
	}
	if err := s.store.InsertProject(ctx, project); err != nil {
		return store.Project{}, err
	}
	s.indexProject(project)
	return project, nil
}

func (s *Service) ListProjects(ctx context.Context, clientEmail string) ([]store.Project, error) {
	return s.store.ListProjects(ctx, clientEmail)
}

func (s *Service) GetProject(ctx context.Context, title string) (store.Project, error) {
	return s.store.GetProject(ctx, title)
}

func (s *Service) SearchProjects(q search.Query) search.Response {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: q.Text}
	}
	return s.search.Search(q)
}

func (s *Service) indexProject(project store.Project) {
	if s.search == nil {
		return
	}
	s.search.IndexProject(search.ProjectRecord{
		Title:       project.Title,
		Description: project.Description,
		Skills:      project.Skills,
		ClientEmail: project.ClientEmail,
		ClientName:  project.ClientName,
		Budget:      project.Budget,
		Deadline:    project.Deadline,
		Status:      project.Status,
	})
}

// refreshProjectStatus keeps the catalog row and the search index in step
// with the status recorded on the application.
func (s *Service) refreshProjectStatus(ctx context.Context, title, status string) {
	if err := s.store.UpdateProjectStatus(ctx, title, status); err != nil {
		log.Printf("app: update project status for %q: %v", title, err)
		return
	}
	if project, err := s.store.GetProject(ctx, title); err == nil {
		s.indexProject(project)
	}
}

// Applications

func (s *Service) Apply(ctx context.Context, sess Session, projectTitle string, input ApplicationInput) (ApplicationView, error) {
	if err := requireRole(sess, auth.RoleFreelancer); err != nil {
		return ApplicationView{}, err
	}
	project, err := s.store.GetProject(ctx, projectTitle)
	if err != nil {
		return ApplicationView{}, err
	}

	var existing *store.Application
	prior, err := s.store.GetApplication(ctx, projectTitle, sess.Email)
	switch {
	case err == nil:
		existing = &prior
	case errors.Is(err, sql.ErrNoRows):
	default:
		return ApplicationView{}, err
	}

	app, err := negotiation.Submit(existing, project, negotiation.SubmitInput{
		FreelancerName:  sess.UserName,
		FreelancerEmail: sess.Email,
		ProposedAmount:  input.ProposedAmount,
		Deadline:        input.Deadline,
		Pitch:           input.Pitch,
	}, time.Now())
	if err != nil {
		return ApplicationView{}, err
	}

	// A superseded rejection is replaced, not updated: the fresh application
	// starts a new negotiation with a clean history. The replacement runs in
	// one transaction so no reader sees the gap between old and new.
	if existing != nil {
		err = s.store.ReplaceApplication(ctx, app)
	} else {
		err = s.store.InsertApplication(ctx, app)
	}
	if err != nil {
		return ApplicationView{}, err
	}
	app.Version = 1

	s.publish(ctx, events.Event{
		Kind:            events.ApplicationSubmitted,
		ProjectTitle:    projectTitle,
		FreelancerEmail: sess.Email,
		ClientEmail:     project.ClientEmail,
		Actor:           sess.Email,
		Amount:          input.ProposedAmount,
	})
	s.record(app, sess.Email, "submit application")
	return viewOf(app), nil
}

func (s *Service) Withdraw(ctx context.Context, sess Session, projectTitle string) error {
	if err := requireRole(sess, auth.RoleFreelancer); err != nil {
		return err
	}
	// The delete is guarded by state and version: a client acting between our
	// read and the delete bumps the version, the conditional delete misses,
	// and the re-read reports the real state instead of destroying it.
	for attempt := 0; ; attempt++ {
		app, err := s.store.GetApplication(ctx, projectTitle, sess.Email)
		if err != nil {
			return err
		}
		if err := negotiation.Withdraw(app); err != nil {
			return err
		}
		err = s.store.DeleteApplicationCAS(ctx, projectTitle, sess.Email, app.Version)
		if errors.Is(err, store.ErrVersionConflict) && attempt+1 < casRetries {
			continue
		}
		if err != nil {
			return err
		}
		break
	}

	event := events.Event{
		Kind:            events.ApplicationWithdrawn,
		ProjectTitle:    projectTitle,
		FreelancerEmail: sess.Email,
		Actor:           sess.Email,
	}
	if project, err := s.store.GetProject(ctx, projectTitle); err == nil {
		event.ClientEmail = project.ClientEmail
	}
	s.publish(ctx, event)
	return nil
}

func (s *Service) AcceptApplication(ctx context.Context, sess Session, projectTitle, freelancerEmail string) (ApplicationView, error) {
	project, err := s.requireOwnedProject(ctx, sess, projectTitle)
	if err != nil {
		return ApplicationView{}, err
	}

	app, err := s.applyTransition(ctx, projectTitle, freelancerEmail, func(app store.Application) (store.Application, error) {
		return negotiation.Accept(app)
	})
	if err != nil {
		return ApplicationView{}, err
	}
	s.refreshProjectStatus(ctx, projectTitle, app.ProjectStatus)

	s.publish(ctx, events.Event{
		Kind:            events.ApplicationAccepted,
		ProjectTitle:    projectTitle,
		FreelancerEmail: freelancerEmail,
		ClientEmail:     project.ClientEmail,
		Actor:           sess.Email,
		ProjectStatus:   app.ProjectStatus,
	})
	s.record(app, sess.Email, "accept application")
	s.mailDecision(freelancerEmail, app.FreelancerName, projectTitle, true, "")
	return viewOf(app), nil
}

func (s *Service) RejectApplication(ctx context.Context, sess Session, projectTitle, freelancerEmail, reason string) (ApplicationView, error) {
	project, err := s.requireOwnedProject(ctx, sess, projectTitle)
	if err != nil {
		return ApplicationView{}, err
	}

	app, err := s.applyTransition(ctx, projectTitle, freelancerEmail, func(app store.Application) (store.Application, error) {
		return negotiation.Reject(app, reason)
	})
	if err != nil {
		return ApplicationView{}, err
	}

	s.publish(ctx, events.Event{
		Kind:            events.ApplicationRejected,
		ProjectTitle:    projectTitle,
		FreelancerEmail: freelancerEmail,
		ClientEmail:     project.ClientEmail,
		Actor:           sess.Email,
		Reason:          app.RejectionReason,
	})
	s.record(app, sess.Email, "reject application")
	s.mailDecision(freelancerEmail, app.FreelancerName, projectTitle, false, app.RejectionReason)
	return viewOf(app), nil
}

func (s *Service) ProposeStatus(ctx context.Context, sess Session, projectTitle, newStatus string) (ApplicationView, error) {
	if err := requireRole(sess, auth.RoleFreelancer); err != nil {
		return ApplicationView{}, err
	}

	app, err := s.applyTransition(ctx, projectTitle, sess.Email, func(app store.Application) (store.Application, error) {
		return negotiation.ProposeStatus(app, newStatus)
	})
	if err != nil {
		return ApplicationView{}, err
	}

	event := events.Event{
		Kind:            events.StatusProposed,
		ProjectTitle:    projectTitle,
		FreelancerEmail: sess.Email,
		Actor:           sess.Email,
		ProposedStatus:  newStatus,
	}
	if project, err := s.store.GetProject(ctx, projectTitle); err == nil {
		event.ClientEmail = project.ClientEmail
	}
	s.publish(ctx, event)
	s.record(app, sess.Email, "propose status "+newStatus)
	return viewOf(app), nil
}

func (s *Service) ApproveProposal(ctx context.Context, sess Session, projectTitle, freelancerEmail string) (ApplicationView, error) {
	project, err := s.requireOwnedProject(ctx, sess, projectTitle)
	if err != nil {
		return ApplicationView{}, err
	}

	var approval negotiation.Approval
	credited := false
	app, err := s.applyTransition(ctx, projectTitle, freelancerEmail, func(app store.Application) (store.Application, error) {
		next, result, err := negotiation.ApproveProposal(app)
		if err != nil {
			return store.Application{}, err
		}
		approval = result
		// The ledger row must land before the earnings_added flag does. If
		// the credit fails the flag is never persisted and the client can
		// approve again; if the flag write loses the CAS race the unique
		// constraint turns the retried credit into a no-op.
		if result.CreditEarnings {
			fresh, err := s.store.CreditEarnings(ctx, freelancerEmail, projectTitle, next.ProposedAmount)
			if err != nil {
				return store.Application{}, fmt.Errorf("credit earnings: %w", err)
			}
			credited = credited || fresh
		}
		return next, nil
	})
	if err != nil {
		return ApplicationView{}, err
	}
	s.refreshProjectStatus(ctx, projectTitle, approval.NewProjectStatus)

	s.publish(ctx, events.Event{
		Kind:            events.ProposalApproved,
		ProjectTitle:    projectTitle,
		FreelancerEmail: freelancerEmail,
		ClientEmail:     project.ClientEmail,
		Actor:           sess.Email,
		ProjectStatus:   approval.NewProjectStatus,
	})
	if approval.Completed {
		s.publish(ctx, events.Event{
			Kind:            events.ProjectCompleted,
			ProjectTitle:    projectTitle,
			FreelancerEmail: freelancerEmail,
			ClientEmail:     project.ClientEmail,
			Actor:           sess.Email,
			ProjectStatus:   store.ProjectCompleted,
		})
	}
	if credited {
		s.publish(ctx, events.Event{
			Kind:            events.EarningsCredited,
			ProjectTitle:    projectTitle,
			FreelancerEmail: freelancerEmail,
			ClientEmail:     project.ClientEmail,
			Amount:          app.ProposedAmount,
		})
	}
	s.record(app, sess.Email, "approve proposal")
	return viewOf(app), nil
}

func (s *Service) RejectProposal(ctx context.Context, sess Session, projectTitle, freelancerEmail, reason string) (ApplicationView, error) {
	project, err := s.requireOwnedProject(ctx, sess, projectTitle)
	if err != nil {
		return ApplicationView{}, err
	}

	app, err := s.applyTransition(ctx, projectTitle, freelancerEmail, func(app store.Application) (store.Application, error) {
		return negotiation.RejectProposal(app, reason)
	})
	if err != nil {
		return ApplicationView{}, err
	}

	s.publish(ctx, events.Event{
		Kind:            events.ProposalRejected,
		ProjectTitle:    projectTitle,
		FreelancerEmail: freelancerEmail,
		ClientEmail:     project.ClientEmail,
		Actor:           sess.Email,
		Reason:          app.ProposalRejectionReason,
	})
	s.record(app, sess.Email, "reject proposal")
	return viewOf(app), nil
}

// RateClient records the freelancer's one-time rating of the client after a
// completed project.
func (s *Service) RateClient(ctx context.Context, sess Session, projectTitle string, stars int, review string) (ApplicationView, error) {
	if err := requireRole(sess, auth.RoleFreelancer); err != nil {
		return ApplicationView{}, err
	}

	app, err := s.applyTransition(ctx, projectTitle, sess.Email, func(app store.Application) (store.Application, error) {
		return negotiation.SubmitFreelancerRating(app, stars, review)
	})
	if err != nil {
		return ApplicationView{}, err
	}

	event := events.Event{
		Kind:            events.RatingSubmitted,
		ProjectTitle:    projectTitle,
		FreelancerEmail: sess.Email,
		Actor:           sess.Email,
	}
	if project, err := s.store.GetProject(ctx, projectTitle); err == nil {
		event.ClientEmail = project.ClientEmail
	}
	s.publish(ctx, event)
	s.record(app, sess.Email, "rate client")
	return viewOf(app), nil
}

// RateFreelancer records the client's one-time rating of the freelancer.
func (s *Service) RateFreelancer(ctx context.Context, sess Session, projectTitle, freelancerEmail string, stars int) (ApplicationView, error) {
	project, err := s.requireOwnedProject(ctx, sess, projectTitle)
	if err != nil {
		return ApplicationView{}, err
	}

	app, err := s.applyTransition(ctx, projectTitle, freelancerEmail, func(app store.Application) (store.Application, error) {
		return negotiation.SubmitClientRating(app, stars)
	})
	if err != nil {
		return ApplicationView{}, err
	}

	s.publish(ctx, events.Event{
		Kind:            events.RatingSubmitted,
		ProjectTitle:    projectTitle,
		FreelancerEmail: freelancerEmail,
		ClientEmail:     project.ClientEmail,
		Actor:           sess.Email,
	})
	s.record(app, sess.Email, "rate freelancer")
	return viewOf(app), nil
}

func (s *Service) FreelancerApplications(ctx context.Context, sess Session) ([]ApplicationView, error) {
	if err := requireRole(sess, auth.RoleFreelancer); err != nil {
		return nil, err
	}
	apps, err := s.store.ListApplicationsByFreelancer(ctx, sess.Email)
	if err != nil {
		return nil, err
	}
	return viewsOf(apps), nil
}

func (s *Service) ProjectApplications(ctx context.Context, sess Session, projectTitle string) ([]ApplicationView, error) {
	if _, err := s.requireOwnedProject(ctx, sess, projectTitle); err != nil {
		return nil, err
	}
	apps, err := s.store.ListApplicationsByProject(ctx, projectTitle)
	if err != nil {
		return nil, err
	}
	return viewsOf(apps), nil
}

// Earnings and ratings

func (s *Service) Earnings(ctx context.Context, sess Session) (EarningsSummary, error) {
	if err := requireRole(sess, auth.RoleFreelancer); err != nil {
		return EarningsSummary{}, err
	}
	total, err := s.store.TotalEarnings(ctx, sess.Email)
	if err != nil {
		return EarningsSummary{}, err
	}
	entries, err := s.store.ListEarnings(ctx, sess.Email)
	if err != nil {
		return EarningsSummary{}, err
	}
	return EarningsSummary{Total: total, Entries: entries}, nil
}

func (s *Service) ClientRatingSummary(ctx context.Context, freelancerEmail string) (RatingSummary, error) {
	average, count, err := s.store.AverageClientRating(ctx, freelancerEmail)
	if err != nil {
		return RatingSummary{}, err
	}
	return RatingSummary{Average: average, Count: count}, nil
}

// Notifications

func (s *Service) Notifications(ctx context.Context, sess Session) ([]store.Notification, error) {
	return s.store.ListNotifications(ctx, sess.Email)
}

func (s *Service) MarkNotificationRead(ctx context.Context, sess Session, id int64) error {
	return s.store.MarkNotificationRead(ctx, sess.Email, id)
}

func (s *Service) MarkAllNotificationsRead(ctx context.Context, sess Session) error {
	return s.store.MarkAllNotificationsRead(ctx, sess.Email)
}

// Trash

func (s *Service) Archive(ctx context.Context, sess Session, projectTitle string) error {
	if err := requireRole(sess, auth.RoleFreelancer); err != nil {
		return err
	}
	var app store.Application
	for attempt := 0; ; attempt++ {
		var err error
		app, err = s.store.GetApplication(ctx, projectTitle, sess.Email)
		if err != nil {
			return err
		}
		if err := negotiation.Archivable(app); err != nil {
			return err
		}
		err = s.store.ArchiveApplication(ctx, projectTitle, sess.Email, time.Now(), app.Version)
		if errors.Is(err, store.ErrVersionConflict) && attempt+1 < casRetries {
			continue
		}
		if err != nil {
			return err
		}
		break
	}

	s.publish(ctx, events.Event{
		Kind:            events.ApplicationArchived,
		ProjectTitle:    projectTitle,
		FreelancerEmail: sess.Email,
		Actor:           sess.Email,
	})
	s.record(app, sess.Email, "archive application")
	return nil
}

func (s *Service) ArchivedApplications(ctx context.Context, sess Session) ([]ArchivedApplicationView, error) {
	if err := requireRole(sess, auth.RoleFreelancer); err != nil {
		return nil, err
	}
	items, err := s.store.ListArchivedApplications(ctx, sess.Email)
	if err != nil {
		return nil, err
	}
	views := make([]ArchivedApplicationView, 0, len(items))
	for _, item := range items {
		views = append(views, ArchivedApplicationView{
			ApplicationView: viewOf(item.Application),
			ArchivedAt:      item.ArchivedAt,
		})
	}
	return views, nil
}

func (s *Service) Restore(ctx context.Context, sess Session, projectTitle string) (ApplicationView, error) {
	if err := requireRole(sess, auth.RoleFreelancer); err != nil {
		return ApplicationView{}, err
	}
	app, err := s.store.RestoreApplication(ctx, projectTitle, sess.Email)
	if err != nil {
		return ApplicationView{}, err
	}

	s.publish(ctx, events.Event{
		Kind:            events.ApplicationRestored,
		ProjectTitle:    projectTitle,
		FreelancerEmail: sess.Email,
		Actor:           sess.Email,
	})
	s.record(app, sess.Email, "restore application")
	return viewOf(app), nil
}

// PermanentlyDelete purges archived applications. The caller must type the
// word "delete" to confirm; the purge is irreversible.
func (s *Service) PermanentlyDelete(ctx context.Context, sess Session, projectTitles []string, confirmation string) (int, error) {
	if err := requireRole(sess, auth.RoleFreelancer); err != nil {
		return 0, err
	}
	if !strings.EqualFold(strings.TrimSpace(confirmation), "delete") {
		return 0, domainError(http.StatusUnprocessableEntity, "CONFIRMATION_REQUIRED", `type "delete" to confirm permanent deletion`, nil)
	}
	if len(projectTitles) == 0 {
		return 0, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "no applications selected", nil)
	}

	purged, err := s.store.PurgeArchivedApplications(ctx, sess.Email, projectTitles)
	if err != nil {
		return purged, err
	}
	for _, title := range projectTitles {
		s.publish(ctx, events.Event{
			Kind:            events.ApplicationPurged,
			ProjectTitle:    title,
			FreelancerEmail: sess.Email,
			Actor:           sess.Email,
		})
	}
	return purged, nil
}

// History and migration

func (s *Service) NegotiationHistory(ctx context.Context, sess Session, projectTitle, freelancerEmail string, limit int) ([]history.Entry, error) {
	if s.journal == nil {
		return []history.Entry{}, nil
	}
	switch sess.Role {
	case auth.RoleFreelancer:
		if sess.Email != freelancerEmail {
			return nil, domainError(http.StatusForbidden, "FORBIDDEN", "you can only view your own negotiation history", nil)
		}
	case auth.RoleClient:
		if _, err := s.requireOwnedProject(ctx, sess, projectTitle); err != nil {
			return nil, err
		}
	}
	return s.journal.History(projectTitle, freelancerEmail, limit)
}

// ImportLegacySnapshot loads the browser prototype's exported collections.
// Records already present are kept as-is; keys where the two legacy
// collections disagree are reported and skipped.
func (s *Service) ImportLegacySnapshot(ctx context.Context, clientJSON, freelancerJSON []byte) (int, []store.Divergence, error) {
	return s.store.ImportLegacySnapshot(ctx, clientJSON, freelancerJSON)
}

// Reports

func (s *Service) ApplicationsReport(ctx context.Context, sess Session) (*export.Result, error) {
	if s.exports == nil {
		return nil, export.ErrStorageUnavailable
	}
	if sess.Role == auth.RoleClient {
		return s.exports.ClientApplicationsReport(ctx, sess.Email)
	}
	return s.exports.FreelancerApplicationsReport(ctx, sess.Email)
}

func (s *Service) EarningsStatement(ctx context.Context, sess Session) (*export.Result, error) {
	if err := requireRole(sess, auth.RoleFreelancer); err != nil {
		return nil, err
	}
	if s.exports == nil {
		return nil, export.ErrStorageUnavailable
	}
	result, err := s.exports.EarningsStatement(ctx, sess.Email)
	if err != nil {
		return nil, err
	}
	if key, err := s.exports.Store(ctx, sess.Email, result); err == nil {
		log.Printf("app: stored earnings statement at %s", key)
	} else if !errors.Is(err, export.ErrStorageUnavailable) {
		log.Printf("app: store earnings statement: %v", err)
	}
	return result, nil
}

// Internals

const casRetries = 3

// applyTransition runs the read-mutate-CAS-write loop. A version conflict
// means another writer landed between our read and write; we re-read and
// retry so the last transactional writer wins. Transition rule violations
// abort immediately.
func (s *Service) applyTransition(ctx context.Context, projectTitle, freelancerEmail string, mutate func(store.Application) (store.Application, error)) (store.Application, error) {
	for attempt := 0; ; attempt++ {
		app, err := s.store.GetApplication(ctx, projectTitle, freelancerEmail)
		if err != nil {
			return store.Application{}, err
		}
		next, err := mutate(app)
		if err != nil {
			return store.Application{}, err
		}
		next.Version = app.Version
		if err := s.store.UpdateApplicationCAS(ctx, next); err != nil {
			if errors.Is(err, store.ErrVersionConflict) && attempt+1 < casRetries {
				continue
			}
			return store.Application{}, err
		}
		next.Version++
		return next, nil
	}
}

func (s *Service) requireOwnedProject(ctx context.Context, sess Session, projectTitle string) (store.Project, error) {
	if err := requireRole(sess, auth.RoleClient); err != nil {
		return store.Project{}, err
	}
	project, err := s.store.GetProject(ctx, projectTitle)
	if err != nil {
		return store.Project{}, err
	}
	if project.ClientEmail != sess.Email {
		return store.Project{}, domainError(http.StatusForbidden, "FORBIDDEN", "you do not own this project", nil)
	}
	return project, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	event.ID = util.NewID("evt")
	event.OccurredAt = time.Now()
	s.bus.Publish(ctx, event)
	if s.fanout != nil {
		if err := s.fanout.Publish(ctx, event); err != nil {
			log.Printf("app: fanout publish %s: %v", event.Kind, err)
		}
	}
}

func (s *Service) record(app store.Application, actor, message string) {
	if s.journal == nil {
		return
	}
	snap := history.Snapshot{
		ProjectTitle:            app.ProjectTitle,
		FreelancerEmail:         app.FreelancerEmail,
		State:                   string(app.State),
		ProjectStatus:           app.ProjectStatus,
		ProposedStatus:          app.ProposedStatus,
		ProposalRejectionReason: app.ProposalRejectionReason,
		RejectionReason:         app.RejectionReason,
		EarningsAdded:           app.EarningsAdded,
		Rated:                   app.Rated,
		FreelancerRating:        app.FreelancerRating,
		Version:                 app.Version,
	}
	if _, err := s.journal.RecordTransition(app.ProjectTitle, app.FreelancerEmail, snap, actor, message); err != nil {
		log.Printf("app: journal %q: %v", message, err)
	}
}

func (s *Service) mailDecision(to, userName, projectTitle string, accepted bool, reason string) {
	if s.mailer == nil || !s.mailer.IsConfigured() {
		return
	}
	go func() {
		if err := s.mailer.SendApplicationDecision(to, userName, projectTitle, accepted, reason); err != nil {
			log.Printf("app: send decision email to %s: %v", to, err)
		}
	}()
}

func viewOf(app store.Application) ApplicationView {
	legacyStatus := "Accepted"
	switch app.State {
	case store.StatePending:
		legacyStatus = "Pending"
	case store.StateRejected:
		legacyStatus = "Rejected"
	}
	return ApplicationView{
		ProjectTitle:            app.ProjectTitle,
		FreelancerEmail:         app.FreelancerEmail,
		FreelancerName:          app.FreelancerName,
		ProposedAmount:          app.ProposedAmount,
		Deadline:                app.Deadline,
		Pitch:                   app.Pitch,
		State:                   string(app.State),
		Status:                  legacyStatus,
		ProjectStatus:           app.ProjectStatus,
		ProposedStatus:          app.ProposedStatus,
		AwaitingApproval:        app.State == store.StateProposalAwaiting,
		ApprovedByClient:        app.ApprovedByClient,
		ClientRejected:          app.State == store.StateProposalRejected,
		ProposalRejectionReason: app.ProposalRejectionReason,
		RejectionReason:         app.RejectionReason,
		EarningsAdded:           app.EarningsAdded,
		Rated:                   app.Rated,
		ClientRating:            app.ClientRating,
		FreelancerRating:        app.FreelancerRating,
		FreelancerReview:        app.FreelancerReview,
		AppliedAt:               app.AppliedAt,
		UpdatedAt:               app.UpdatedAt,
		Version:                 app.Version,
	}
}

func viewsOf(apps []store.Application) []ApplicationView {
	views := make([]ApplicationView, 0, len(apps))
	for _, app := range apps {
		views = append(views, viewOf(app))
	}
	return views
}
