package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dfryer1193/wizardry/shared/db"
	"github.com/dfryer1193/wizardry/wizard/domain"
)

var _ domain.WizardRepository = (*SQLiteWizardRepository)(nil)

// SQLiteWizardRepository implements domain.WizardRepository using SQLite.
// Update and Delete are conditional statements and SwapImage runs in its own
// transaction, so a row removed between an existence probe and the mutation
// yields domain.ErrWizardNotFound rather than a silent no-op.
type SQLiteWizardRepository struct {
	db *sql.DB
}

func NewWizardRepository(sqlDB *sql.DB) *SQLiteWizardRepository {
	return &SQLiteWizardRepository{
		db: sqlDB,
	}
}

const wizardColumns = `id, name, title, age, image_name`

const createWizardQuery = `
	INSERT INTO wizards (name, title, age)
	VALUES (?, ?, ?)
	RETURNING ` + wizardColumns

func (r *SQLiteWizardRepository) Create(ctx context.Context, w domain.CreateWizard) (*domain.Wizard, error) {
	executor := db.GetExecutor(ctx, r.db)

	wizard, err := scanWizard(executor.QueryRowContext(ctx, createWizardQuery, w.Name, w.Title, w.Age))
	if err != nil {
		return nil, fmt.Errorf("failed to insert wizard: %w", err)
	}

	return wizard, nil
}

const listWizardsQuery = `
	SELECT ` + wizardColumns + `
	FROM wizards
	ORDER BY id ASC
`

// List returns all wizards ordered by id ascending. An empty table yields an
// empty, non-nil slice.
func (r *SQLiteWizardRepository) List(ctx context.Context) ([]*domain.Wizard, error) {
	rows, err := db.GetExecutor(ctx, r.db).QueryContext(ctx, listWizardsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list wizards: %w", err)
	}
	defer rows.Close()

	wizards := make([]*domain.Wizard, 0)
	for rows.Next() {
		wizard, err := scanWizard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wizard row: %w", err)
		}
		wizards = append(wizards, wizard)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wizard rows: %w", err)
	}

	return wizards, nil
}

const getWizardQuery = `
	SELECT ` + wizardColumns + `
	FROM wizards
	WHERE id = ?
`

func (r *SQLiteWizardRepository) Get(ctx context.Context, id int64) (*domain.Wizard, error) {
	wizard, err := scanWizard(db.GetExecutor(ctx, r.db).QueryRowContext(ctx, getWizardQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrWizardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wizard %d: %w", id, err)
	}

	return wizard, nil
}

const existsWizardQuery = `SELECT EXISTS(SELECT 1 FROM wizards WHERE id = ?)`

func (r *SQLiteWizardRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := db.GetExecutor(ctx, r.db).QueryRowContext(ctx, existsWizardQuery, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check wizard %d: %w", id, err)
	}

	return exists, nil
}

const updateWizardQuery = `
	UPDATE wizards
	SET name = ?, title = ?, age = ?
	WHERE id = ?
	RETURNING ` + wizardColumns

func (r *SQLiteWizardRepository) Update(ctx context.Context, id int64, w domain.CreateWizard) (*domain.Wizard, error) {
	executor := db.GetExecutor(ctx, r.db)

	wizard, err := scanWizard(executor.QueryRowContext(ctx, updateWizardQuery, w.Name, w.Title, w.Age, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrWizardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update wizard %d: %w", id, err)
	}

	return wizard, nil
}

const deleteWizardQuery = `
	DELETE FROM wizards
	WHERE id = ?
	RETURNING image_name
`

// Delete removes the wizard and returns the image reference it held.
func (r *SQLiteWizardRepository) Delete(ctx context.Context, id int64) (*string, error) {
	var imageName sql.NullString
	err := db.GetExecutor(ctx, r.db).QueryRowContext(ctx, deleteWizardQuery, id).Scan(&imageName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrWizardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete wizard %d: %w", id, err)
	}

	return nullableString(imageName), nil
}

const (
	selectImageQuery = `SELECT image_name FROM wizards WHERE id = ?`
	setImageQuery    = `UPDATE wizards SET image_name = ? WHERE id = ?`
)

// SwapImage replaces the image reference inside a single transaction and
// returns the reference it displaced. Two concurrent swaps on the same row
// each observe a distinct previous value.
func (r *SQLiteWizardRepository) SwapImage(ctx context.Context, id int64, imageName *string) (*string, error) {
	var previous *string

	err := db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		executor := db.GetExecutor(txCtx, r.db)

		var current sql.NullString
		err := executor.QueryRowContext(txCtx, selectImageQuery, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrWizardNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read image reference: %w", err)
		}

		var next any
		if imageName != nil {
			next = *imageName
		}

		if _, err := executor.ExecContext(txCtx, setImageQuery, next, id); err != nil {
			return fmt.Errorf("failed to set image reference: %w", err)
		}

		previous = nullableString(current)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return previous, nil
}

const imageNamesQuery = `SELECT image_name FROM wizards WHERE image_name IS NOT NULL`

func (r *SQLiteWizardRepository) ImageNames(ctx context.Context) ([]string, error) {
	rows, err := db.GetExecutor(ctx, r.db).QueryContext(ctx, imageNamesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list image names: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan image name: %w", err)
		}
		names = append(names, name)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating image names: %w", err)
	}

	return names, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// wizardRow is a private struct used to scan database rows
type wizardRow struct {
	ID        int64          `db:"id"`
	Name      string         `db:"name"`
	Title     string         `db:"title"`
	Age       int            `db:"age"`
	ImageName sql.NullString `db:"image_name"`
}

func scanWizard(s rowScanner) (*domain.Wizard, error) {
	var row wizardRow
	if err := s.Scan(&row.ID, &row.Name, &row.Title, &row.Age, &row.ImageName); err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (wr *wizardRow) toDomain() *domain.Wizard {
	return &domain.Wizard{
		ID:        wr.ID,
		Name:      wr.Name,
		Title:     wr.Title,
		Age:       wr.Age,
		ImageName: nullableString(wr.ImageName),
	}
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
