package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/couplemap/couplemap/internal/domain"
)

// FolderRepo defines the persistence operations for Folders.
// Every operation is scoped by coupleID; a folder of another couple behaves
// exactly like a folder that does not exist.
type FolderRepo interface {
	// Create inserts a new folder and returns the persisted record.
	Create(ctx context.Context, folder domain.Folder) (domain.Folder, error)

	// GetByID retrieves a single folder owned by coupleID.
	// Returns domain.ErrNotFound if no such folder exists for that couple.
	GetByID(ctx context.Context, coupleID, id uuid.UUID) (domain.Folder, error)

	// List returns the couple's folders ordered by sort, then created_at.
	List(ctx context.Context, coupleID uuid.UUID) ([]domain.Folder, error)

	// Update applies the non-empty slots of patch.
	// Returns domain.ErrNotFound if no such folder exists for that couple.
	Update(ctx context.Context, coupleID, id uuid.UUID, patch domain.FolderPatch) error

	// Delete detaches every place from the folder and removes the folder, in
	// one transaction. Returns domain.ErrNotFound if no such folder exists
	// for that couple; in that case nothing is changed.
	Delete(ctx context.Context, coupleID, id uuid.UUID) error
}

// pgFolderRepo is the Postgres implementation of FolderRepo.
type pgFolderRepo struct {
	db db
}

// NewFolderRepo constructs a FolderRepo backed by the provided db connection.
func NewFolderRepo(db db) FolderRepo {
	return &pgFolderRepo{db: db}
}

const folderColumns = `id, couple_id, name, color, icon, sort, created_at`

func (r *pgFolderRepo) Create(ctx context.Context, folder domain.Folder) (domain.Folder, error) {
	const q = `
		INSERT INTO folders (couple_id, name, color, icon, sort)
		VALUES (@couple_id, @name, @color, @icon, @sort)
		RETURNING ` + folderColumns

	args := pgx.NamedArgs{
		"couple_id": folder.CoupleID,
		"name":      folder.Name,
		"color":     folder.Color,
		"icon":      iconText(folder.Icon),
		"sort":      folder.Sort,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanFolder(row)
	if err != nil {
		return domain.Folder{}, fmt.Errorf("repo.FolderRepo.Create: %w", translate(err))
	}
	return result, nil
}

func (r *pgFolderRepo) GetByID(ctx context.Context, coupleID, id uuid.UUID) (domain.Folder, error) {
	const q = `
		SELECT ` + folderColumns + `
		FROM folders
		WHERE id = @id AND couple_id = @couple_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "couple_id": coupleID})
	result, err := scanFolder(row)
	if err != nil {
		return domain.Folder{}, fmt.Errorf("repo.FolderRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgFolderRepo) List(ctx context.Context, coupleID uuid.UUID) ([]domain.Folder, error) {
	const q = `
		SELECT ` + folderColumns + `
		FROM folders
		WHERE couple_id = @couple_id
		ORDER BY sort ASC, created_at ASC, id ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"couple_id": coupleID})
	if err != nil {
		return nil, fmt.Errorf("repo.FolderRepo.List: %w", err)
	}
	defer rows.Close()

	folders := []domain.Folder{}
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.FolderRepo.List: scan: %w", err)
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.FolderRepo.List: rows: %w", err)
	}
	return folders, nil
}

func (r *pgFolderRepo) Update(ctx context.Context, coupleID, id uuid.UUID, patch domain.FolderPatch) error {
	args := pgx.NamedArgs{"id": id, "couple_id": coupleID}
	var set []string

	if patch.Name != nil {
		set = append(set, "name = @name")
		args["name"] = *patch.Name
	}
	if patch.Color != nil {
		set = append(set, "color = @color")
		args["color"] = *patch.Color
	}
	if patch.Icon.IsSpecified() {
		set = append(set, "icon = @icon")
		if patch.Icon.IsNull() {
			args["icon"] = nil
		} else {
			args["icon"] = string(patch.Icon.MustGet())
		}
	}
	if patch.Sort != nil {
		set = append(set, "sort = @sort")
		args["sort"] = *patch.Sort
	}

	// An empty patch still has to answer "does this folder exist for you".
	if len(set) == 0 {
		if _, err := r.GetByID(ctx, coupleID, id); err != nil {
			return fmt.Errorf("repo.FolderRepo.Update: %w", err)
		}
		return nil
	}

	q := `UPDATE folders SET ` + strings.Join(set, ", ") + ` WHERE id = @id AND couple_id = @couple_id`
	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("repo.FolderRepo.Update: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.FolderRepo.Update: %w", domain.ErrNotFound)
	}
	return nil
}

// Delete nulls the folder reference on places first so the composite foreign
// key never sees a dangling row, then removes the folder. Both statements run
// in one transaction.
func (r *pgFolderRepo) Delete(ctx context.Context, coupleID, id uuid.UUID) error {
	const detach = `
		UPDATE places
		SET folder_id = NULL
		WHERE couple_id = @couple_id AND folder_id = @id`
	const remove = `
		DELETE FROM folders
		WHERE id = @id AND couple_id = @couple_id`

	args := pgx.NamedArgs{"id": id, "couple_id": coupleID}

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, detach, args); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, remove, args)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("repo.FolderRepo.Delete: %w", err)
	}
	return nil
}

// iconText converts an optional icon into a value pgx binds as NULL when nil.
func iconText(icon *domain.FolderIcon) pgtype.Text {
	if icon == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: string(*icon), Valid: true}
}

// scanFolder maps a single database row into a domain.Folder.
func scanFolder(s scanner) (domain.Folder, error) {
	var (
		f        domain.Folder
		id       pgtype.UUID
		coupleID pgtype.UUID
		icon     pgtype.Text
	)
	err := s.Scan(&id, &coupleID, &f.Name, &f.Color, &icon, &f.Sort, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Folder{}, domain.ErrNotFound
		}
		return domain.Folder{}, err
	}
	f.ID = uuid.UUID(id.Bytes)
	f.CoupleID = uuid.UUID(coupleID.Bytes)
	if icon.Valid {
		i := domain.FolderIcon(icon.String)
		f.Icon = &i
	}
	return f, nil
}
