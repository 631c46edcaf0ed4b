package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrVersionConflict is returned by UpdateApplicationCAS when the stored
// version no longer matches the one the caller read. The caller re-reads and
// retries; the last transactional writer wins.
var ErrVersionConflict = errors.New("application version conflict")

// NotificationCap bounds the notification feed per recipient.
const NotificationCap = 50

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Users

func (s *PostgresStore) CreateUser(ctx context.Context, user User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, display_name, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.Email, user.DisplayName, user.PasswordHash, user.Role)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, password_hash, role, created_at
		FROM users WHERE email=$1
	`, email).Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, password_hash, role, created_at
		FROM users WHERE id=$1
	`, userID).Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// Projects

func (s *PostgresStore) InsertProject(ctx context.Context, project Project) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (title, client_email, client_name, description, budget, deadline, skills, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, project.Title, project.ClientEmail, project.ClientName, project.Description,
		project.Budget, project.Deadline, project.Skills, project.Status)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetProject(ctx context.Context, title string) (Project, error) {
	var item Project
	err := s.db.QueryRowContext(ctx, `
		SELECT title, client_email, client_name, description, budget, deadline, skills, status, created_at, updated_at
		FROM projects WHERE title=$1
	`, title).Scan(&item.Title, &item.ClientEmail, &item.ClientName, &item.Description,
		&item.Budget, &item.Deadline, &item.Skills, &item.Status, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Project{}, err
	}
	return item, nil
}

func (s *PostgresStore) ListProjects(ctx context.Context, clientEmail string) ([]Project, error) {
	query := `
		SELECT title, client_email, client_name, description, budget, deadline, skills, status, created_at, updated_at
		FROM projects
	`
	args := []any{}
	if clientEmail != "" {
		query += ` WHERE client_email=$1`
		args = append(args, clientEmail)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	items := make([]Project, 0)
	for rows.Next() {
		var item Project
		if err := rows.Scan(&item.Title, &item.ClientEmail, &item.ClientName, &item.Description,
			&item.Budget, &item.Deadline, &item.Skills, &item.Status, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpdateProjectStatus(ctx context.Context, title, status string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE projects SET status=$2, updated_at=NOW() WHERE title=$1
	`, title, status)
	if err != nil {
		return fmt.Errorf("update project status: %w", err)
	}
	return nil
}

// Applications

const applicationColumns = `
	project_title, freelancer_email, freelancer_name, proposed_amount, deadline, pitch,
	state, project_status, proposed_status, proposal_rejection_reason, rejection_reason,
	approved_by_client, earnings_added, rated, client_rating, freelancer_rating, freelancer_review,
	applied_at, updated_at, version
`

func scanApplication(row interface{ Scan(...any) error }) (Application, error) {
	var app Application
	err := row.Scan(
		&app.ProjectTitle, &app.FreelancerEmail, &app.FreelancerName, &app.ProposedAmount,
		&app.Deadline, &app.Pitch, &app.State, &app.ProjectStatus, &app.ProposedStatus,
		&app.ProposalRejectionReason, &app.RejectionReason, &app.ApprovedByClient,
		&app.EarningsAdded, &app.Rated, &app.ClientRating, &app.FreelancerRating,
		&app.FreelancerReview, &app.AppliedAt, &app.UpdatedAt, &app.Version,
	)
	return app, err
}

func (s *PostgresStore) GetApplication(ctx context.Context, projectTitle, freelancerEmail string) (Application, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+applicationColumns+`
		FROM applications WHERE project_title=$1 AND freelancer_email=$2
	`, projectTitle, freelancerEmail)
	return scanApplication(row)
}

func (s *PostgresStore) InsertApplication(ctx context.Context, app Application) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO applications (
			project_title, freelancer_email, freelancer_name, proposed_amount, deadline, pitch,
			state, project_status, proposed_status, proposal_rejection_reason, rejection_reason,
			approved_by_client, earnings_added, rated, client_rating, freelancer_rating,
			freelancer_review, applied_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`, app.ProjectTitle, app.FreelancerEmail, app.FreelancerName, app.ProposedAmount,
		app.Deadline, app.Pitch, app.State, app.ProjectStatus, app.ProposedStatus,
		app.ProposalRejectionReason, app.RejectionReason, app.ApprovedByClient,
		app.EarningsAdded, app.Rated, app.ClientRating, app.FreelancerRating,
		app.FreelancerReview, app.AppliedAt)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

// UpdateApplicationCAS writes the record only when the stored version still
// equals app.Version. The write bumps the version so concurrent writers fail
// with ErrVersionConflict instead of silently losing updates.
func (s *PostgresStore) UpdateApplicationCAS(ctx context.Context, app Application) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE applications SET
			freelancer_name=$3, proposed_amount=$4, deadline=$5, pitch=$6,
			state=$7, project_status=$8, proposed_status=$9,
			proposal_rejection_reason=$10, rejection_reason=$11,
			approved_by_client=$12, earnings_added=$13, rated=$14,
			client_rating=$15, freelancer_rating=$16, freelancer_review=$17,
			updated_at=NOW(), version=version+1
		WHERE project_title=$1 AND freelancer_email=$2 AND version=$18
	`, app.ProjectTitle, app.FreelancerEmail, app.FreelancerName, app.ProposedAmount,
		app.Deadline, app.Pitch, app.State, app.ProjectStatus, app.ProposedStatus,
		app.ProposalRejectionReason, app.RejectionReason, app.ApprovedByClient,
		app.EarningsAdded, app.Rated, app.ClientRating, app.FreelancerRating,
		app.FreelancerReview, app.Version)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application rows: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := s.db.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM applications WHERE project_title=$1 AND freelancer_email=$2)
		`, app.ProjectTitle, app.FreelancerEmail).Scan(&exists); err != nil {
			return fmt.Errorf("check application exists: %w", err)
		}
		if !exists {
			return sql.ErrNoRows
		}
		return ErrVersionConflict
	}
	return nil
}

// DeleteApplicationCAS removes a record only while it is still pending at the
// version the caller read. A write that landed in between leaves the row
// standing and surfaces as ErrVersionConflict.
func (s *PostgresStore) DeleteApplicationCAS(ctx context.Context, projectTitle, freelancerEmail string, version int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM applications
		WHERE project_title=$1 AND freelancer_email=$2 AND state=$3 AND version=$4
	`, projectTitle, freelancerEmail, StatePending, version)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete application rows: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := s.db.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM applications WHERE project_title=$1 AND freelancer_email=$2)
		`, projectTitle, freelancerEmail).Scan(&exists); err != nil {
			return fmt.Errorf("check application exists: %w", err)
		}
		if !exists {
			return sql.ErrNoRows
		}
		return ErrVersionConflict
	}
	return nil
}

// ReplaceApplication swaps a superseded record for a fresh one in a single
// transaction, so a crash can never leave the pair with neither row.
func (s *PostgresStore) ReplaceApplication(ctx context.Context, app Application) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM applications WHERE project_title=$1 AND freelancer_email=$2
	`, app.ProjectTitle, app.FreelancerEmail); err != nil {
		return fmt.Errorf("replace application delete: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO applications (
			project_title, freelancer_email, freelancer_name, proposed_amount, deadline, pitch,
			state, project_status, proposed_status, proposal_rejection_reason, rejection_reason,
			approved_by_client, earnings_added, rated, client_rating, freelancer_rating,
			freelancer_review, applied_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`, app.ProjectTitle, app.FreelancerEmail, app.FreelancerName, app.ProposedAmount,
		app.Deadline, app.Pitch, app.State, app.ProjectStatus, app.ProposedStatus,
		app.ProposalRejectionReason, app.RejectionReason, app.ApprovedByClient,
		app.EarningsAdded, app.Rated, app.ClientRating, app.FreelancerRating,
		app.FreelancerReview, app.AppliedAt); err != nil {
		return fmt.Errorf("replace application insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) listApplications(ctx context.Context, where string, args ...any) ([]Application, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+applicationColumns+`
		FROM applications `+where+` ORDER BY applied_at DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	items := make([]Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		items = append(items, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) ListApplications(ctx context.Context) ([]Application, error) {
	return s.listApplications(ctx, "")
}

func (s *PostgresStore) ListApplicationsByProject(ctx context.Context, projectTitle string) ([]Application, error) {
	return s.listApplications(ctx, "WHERE project_title=$1", projectTitle)
}

func (s *PostgresStore) ListApplicationsByFreelancer(ctx context.Context, freelancerEmail string) ([]Application, error) {
	return s.listApplications(ctx, "WHERE freelancer_email=$1", freelancerEmail)
}

// Archive

// ArchiveApplication moves a record into the trash at the version the caller
// read. The state predicate re-checks archivability inside the transaction;
// a record that changed since the read stays put and the caller gets
// ErrVersionConflict.
func (s *PostgresStore) ArchiveApplication(ctx context.Context, projectTitle, freelancerEmail string, archivedAt time.Time, version int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO archived_applications (
			project_title, freelancer_email, freelancer_name, proposed_amount, deadline, pitch,
			state, project_status, proposed_status, proposal_rejection_reason, rejection_reason,
			approved_by_client, earnings_added, rated, client_rating, freelancer_rating,
			freelancer_review, applied_at, updated_at, version, archived_at
		)
		SELECT `+applicationColumns+`, $3
		FROM applications
		WHERE project_title=$1 AND freelancer_email=$2 AND version=$4
		  AND (state=$5 OR (project_status=$6 AND rated))
	`, projectTitle, freelancerEmail, archivedAt, version, StateRejected, ProjectCompleted)
	if err != nil {
		return fmt.Errorf("archive application: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM applications WHERE project_title=$1 AND freelancer_email=$2)
		`, projectTitle, freelancerEmail).Scan(&exists); err != nil {
			return fmt.Errorf("check application exists: %w", err)
		}
		if !exists {
			return sql.ErrNoRows
		}
		return ErrVersionConflict
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM applications WHERE project_title=$1 AND freelancer_email=$2
	`, projectTitle, freelancerEmail); err != nil {
		return fmt.Errorf("remove archived application: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}
	return nil
}

// RestoreApplication moves a record back out of the trash. Every field except
// archived_at survives the round trip.
func (s *PostgresStore) RestoreApplication(ctx context.Context, projectTitle, freelancerEmail string) (Application, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Application{}, fmt.Errorf("begin restore tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT `+applicationColumns+`
		FROM archived_applications WHERE project_title=$1 AND freelancer_email=$2
	`, projectTitle, freelancerEmail)
	app, err := scanApplication(row)
	if err != nil {
		return Application{}, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO applications (
			project_title, freelancer_email, freelancer_name, proposed_amount, deadline, pitch,
			state, project_status, proposed_status, proposal_rejection_reason, rejection_reason,
			approved_by_client, earnings_added, rated, client_rating, freelancer_rating,
			freelancer_review, applied_at, updated_at, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`, app.ProjectTitle, app.FreelancerEmail, app.FreelancerName, app.ProposedAmount,
		app.Deadline, app.Pitch, app.State, app.ProjectStatus, app.ProposedStatus,
		app.ProposalRejectionReason, app.RejectionReason, app.ApprovedByClient,
		app.EarningsAdded, app.Rated, app.ClientRating, app.FreelancerRating,
		app.FreelancerReview, app.AppliedAt, app.UpdatedAt, app.Version); err != nil {
		return Application{}, fmt.Errorf("restore application: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM archived_applications WHERE project_title=$1 AND freelancer_email=$2
	`, projectTitle, freelancerEmail); err != nil {
		return Application{}, fmt.Errorf("remove restored application: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Application{}, fmt.Errorf("commit restore tx: %w", err)
	}
	return app, nil
}

func (s *PostgresStore) ListArchivedApplications(ctx context.Context, freelancerEmail string) ([]ArchivedApplication, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+applicationColumns+`, archived_at
		FROM archived_applications WHERE freelancer_email=$1 ORDER BY archived_at DESC
	`, freelancerEmail)
	if err != nil {
		return nil, fmt.Errorf("list archived applications: %w", err)
	}
	defer rows.Close()

	items := make([]ArchivedApplication, 0)
	for rows.Next() {
		var item ArchivedApplication
		if err := rows.Scan(
			&item.ProjectTitle, &item.FreelancerEmail, &item.FreelancerName, &item.ProposedAmount,
			&item.Deadline, &item.Pitch, &item.State, &item.ProjectStatus, &item.ProposedStatus,
			&item.ProposalRejectionReason, &item.RejectionReason, &item.ApprovedByClient,
			&item.EarningsAdded, &item.Rated, &item.ClientRating, &item.FreelancerRating,
			&item.FreelancerReview, &item.AppliedAt, &item.UpdatedAt, &item.Version, &item.ArchivedAt,
		); err != nil {
			return nil, fmt.Errorf("scan archived application: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archived applications: %w", err)
	}
	return items, nil
}

// PurgeArchivedApplications permanently deletes archived records. Returns the
// number of records removed. Irreversible.
func (s *PostgresStore) PurgeArchivedApplications(ctx context.Context, freelancerEmail string, projectTitles []string) (int, error) {
	purged := 0
	for _, title := range projectTitles {
		result, err := s.db.ExecContext(ctx, `
			DELETE FROM archived_applications WHERE project_title=$1 AND freelancer_email=$2
		`, title, freelancerEmail)
		if err != nil {
			return purged, fmt.Errorf("purge archived application: %w", err)
		}
		if affected, err := result.RowsAffected(); err == nil {
			purged += int(affected)
		}
	}
	return purged, nil
}

// Earnings

// CreditEarnings inserts a payout row. The unique constraint on
// (freelancer_email, project_title) makes retries a no-op; the bool reports
// whether this call actually credited.
func (s *PostgresStore) CreditEarnings(ctx context.Context, freelancerEmail, projectTitle string, amount int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO earnings (freelancer_email, project_title, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (freelancer_email, project_title) DO NOTHING
	`, freelancerEmail, projectTitle, amount)
	if err != nil {
		return false, fmt.Errorf("credit earnings: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("credit earnings rows: %w", err)
	}
	return affected > 0, nil
}

func (s *PostgresStore) TotalEarnings(ctx context.Context, freelancerEmail string) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM earnings WHERE freelancer_email=$1
	`, freelancerEmail).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total earnings: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) ListEarnings(ctx context.Context, freelancerEmail string) ([]EarningsEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, freelancer_email, project_title, amount, credited_at
		FROM earnings WHERE freelancer_email=$1 ORDER BY credited_at DESC
	`, freelancerEmail)
	if err != nil {
		return nil, fmt.Errorf("list earnings: %w", err)
	}
	defer rows.Close()

	items := make([]EarningsEntry, 0)
	for rows.Next() {
		var item EarningsEntry
		if err := rows.Scan(&item.ID, &item.FreelancerEmail, &item.ProjectTitle, &item.Amount, &item.CreditedAt); err != nil {
			return nil, fmt.Errorf("scan earnings entry: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate earnings: %w", err)
	}
	return items, nil
}

// AverageClientRating returns the mean rating clients gave a freelancer over
// completed applications, and how many ratings that covers.
func (s *PostgresStore) AverageClientRating(ctx context.Context, freelancerEmail string) (float64, int, error) {
	apps, err := s.listApplications(ctx, "WHERE freelancer_email=$1 AND project_status=$2", freelancerEmail, ProjectCompleted)
	if err != nil {
		return 0, 0, fmt.Errorf("average client rating: %w", err)
	}
	avg, count := clientRatingAverage(apps)
	return avg, count, nil
}

// clientRatingAverage averages the ratings clients gave. A rating counts as
// soon as the client submits it; the freelancer's own rated flag tracks the
// rating they give back and has no bearing here.
func clientRatingAverage(apps []Application) (float64, int) {
	sum, count := 0, 0
	for _, app := range apps {
		if app.ClientRating > 0 {
			sum += app.ClientRating
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	return float64(sum) / float64(count), count
}

// Notifications

// InsertNotification appends to the recipient's feed and trims it to
// NotificationCap, dropping the oldest read entries first.
func (s *PostgresStore) InsertNotification(ctx context.Context, item Notification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (recipient, title, body, type, project_title)
		VALUES ($1, $2, $3, $4, $5)
	`, item.Recipient, item.Title, item.Body, item.Type, item.ProjectTitle)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM notifications
		WHERE recipient=$1 AND id NOT IN (
			SELECT id FROM notifications
			WHERE recipient=$1
			ORDER BY is_read ASC, id DESC
			LIMIT $2
		)
	`, item.Recipient, NotificationCap)
	if err != nil {
		return fmt.Errorf("trim notifications: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListNotifications(ctx context.Context, recipient string) ([]Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recipient, title, body, type, project_title, is_read, created_at
		FROM notifications
		WHERE recipient=$1
		ORDER BY is_read ASC, id DESC
	`, recipient)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	items := make([]Notification, 0)
	for rows.Next() {
		var item Notification
		if err := rows.Scan(&item.ID, &item.Recipient, &item.Title, &item.Body, &item.Type,
			&item.ProjectTitle, &item.IsRead, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) MarkNotificationRead(ctx context.Context, recipient string, id int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET is_read=TRUE WHERE recipient=$1 AND id=$2
	`, recipient, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

func (s *PostgresStore) MarkAllNotificationsRead(ctx context.Context, recipient string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET is_read=TRUE WHERE recipient=$1
	`, recipient)
	if err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}
