package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/zjrosen/maskfield/internal/log"
	"github.com/zjrosen/maskfield/internal/submission"
)

const submissionColumns = `id, guid, complete, created_at`

// submissionRepository implements submission.Repository using SQLite.
type submissionRepository struct {
	db *sql.DB
}

func newSubmissionRepository(db *sql.DB) *submissionRepository {
	return &submissionRepository{db: db}
}

var _ submission.Repository = (*submissionRepository)(nil)

func scanSubmission(scanner interface{ Scan(...any) error }) (*SubmissionModel, error) {
	var model SubmissionModel
	err := scanner.Scan(&model.ID, &model.GUID, &model.Complete, &model.CreatedAt)
	return &model, err
}

// Save inserts the submission and its values in one transaction.
func (r *submissionRepository) Save(s *submission.Submission) error {
	model := toSubmissionModel(s)

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec(
		`INSERT INTO submissions (guid, complete, created_at) VALUES (?, ?, ?)`,
		model.GUID, model.Complete, model.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	for _, v := range toValueModels(s) {
		_, err := tx.Exec(
			`INSERT INTO submission_values (submission_id, position, name, value, complete) VALUES (?, ?, ?, ?, ?)`,
			id, v.Position, v.Name, v.Value, v.Complete,
		)
		if err != nil {
			return fmt.Errorf("failed to insert value %s: %w", v.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit submission: %w", err)
	}
	s.SetID(id)
	log.Debug(log.CatDB, "Saved submission", "guid", model.GUID, "values", len(s.Values()))
	return nil
}

// FindByGUID returns NotFoundError if no submission has the GUID.
func (r *submissionRepository) FindByGUID(guid string) (*submission.Submission, error) {
	row := r.db.QueryRow(`SELECT `+submissionColumns+` FROM submissions WHERE guid = ?`, guid)
	model, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &submission.NotFoundError{GUID: guid}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find submission by guid: %w", err)
	}

	values, err := r.values(model.ID)
	if err != nil {
		return nil, err
	}
	return model.toDomain(values), nil
}

// List returns submissions newest first.
func (r *submissionRepository) List(limit int) ([]*submission.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	var models []*SubmissionModel
	for rows.Next() {
		model, err := scanSubmission(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		models = append(models, model)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}
	_ = rows.Close()

	// Values are read after the outer cursor is closed; in-memory databases
	// run on a single connection.
	out := make([]*submission.Submission, 0, len(models))
	for _, model := range models {
		values, err := r.values(model.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, model.toDomain(values))
	}
	return out, nil
}

func (r *submissionRepository) values(submissionID int64) ([]ValueModel, error) {
	rows, err := r.db.Query(
		`SELECT submission_id, position, name, value, complete FROM submission_values
		WHERE submission_id = ? ORDER BY position`,
		submissionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load values: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var values []ValueModel
	for rows.Next() {
		var v ValueModel
		if err := rows.Scan(&v.SubmissionID, &v.Position, &v.Name, &v.Value, &v.Complete); err != nil {
			return nil, fmt.Errorf("failed to scan value: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate values: %w", err)
	}
	return values, nil
}

// Close is a no-op; the DB owns the connection.
func (r *submissionRepository) Close() error {
	return nil
}
