package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/project-tracker-api/internal/domain/entity"
	"github.com/oksasatya/project-tracker-api/internal/domain/repository"
)

const workspaceColumns = `w.id, w.name, w.description, w.color, w.owner_id, w.created_at, w.updated_at`

type WorkspaceRepository struct {
	db DB
}

func NewWorkspaceRepository(db DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

// Create inserts the workspace and its members in one transaction.
func (r *WorkspaceRepository) Create(ctx context.Context, w *entity.Workspace) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO workspaces (name, description, color, owner_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, updated_at
		`, w.Name, w.Description, w.Color, w.OwnerID)
		if err := row.Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return fmt.Errorf("insert workspace: %w", err)
		}
		for _, m := range w.Members {
			if err := insertMember(ctx, tx, w.ID, m); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertMember(ctx context.Context, db DB, workspaceID string, m entity.WorkspaceMembership) error {
	_, err := db.Exec(ctx, `
		INSERT INTO workspace_members (workspace_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
	`, workspaceID, m.UserID, string(m.Role), m.JoinedAt)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return repository.ErrDuplicate
	case isForeignKeyViolation(err):
		return repository.ErrNotFound
	default:
		return fmt.Errorf("insert workspace member: %w", err)
	}
}

func (r *WorkspaceRepository) GetByID(ctx context.Context, id string) (*entity.Workspace, error) {
	// ids arrive from the URL; a malformed one cannot match
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	list, err := r.list(ctx, `SELECT `+workspaceColumns+` FROM workspaces w WHERE w.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, repository.ErrNotFound
	}
	return &list[0], nil
}

func (r *WorkspaceRepository) ListForUser(ctx context.Context, userID string) ([]entity.Workspace, error) {
	return r.list(ctx, `
		SELECT `+workspaceColumns+`
		FROM workspaces w
		JOIN workspace_members m ON m.workspace_id = w.id
		WHERE m.user_id = $1
		ORDER BY w.created_at DESC
	`, userID)
}

func (r *WorkspaceRepository) list(ctx context.Context, query string, arg any) ([]entity.Workspace, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("select workspaces: %w", err)
	}
	defer rows.Close()

	out := []entity.Workspace{}
	var ids []string
	for rows.Next() {
		var w entity.Workspace
		if err := rows.Scan(&w.ID, &w.Name, &w.Description, &w.Color, &w.OwnerID, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		out = append(out, w)
		ids = append(ids, w.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select workspaces: %w", err)
	}
	if len(ids) == 0 {
		return out, nil
	}

	members, err := r.members(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Members = members[out[i].ID]
	}
	return out, nil
}

func (r *WorkspaceRepository) members(ctx context.Context, workspaceIDs []string) (map[string][]entity.WorkspaceMembership, error) {
	rows, err := r.db.Query(ctx, `
		SELECT workspace_id, user_id, role, joined_at
		FROM workspace_members
		WHERE workspace_id = ANY($1::uuid[])
		ORDER BY joined_at
	`, workspaceIDs)
	if err != nil {
		return nil, fmt.Errorf("select workspace members: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]entity.WorkspaceMembership, len(workspaceIDs))
	for rows.Next() {
		var (
			wid  string
			m    entity.WorkspaceMembership
			role string
		)
		if err := rows.Scan(&wid, &m.UserID, &role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan workspace member: %w", err)
		}
		m.Role = entity.WorkspaceRole(role)
		out[wid] = append(out[wid], m)
	}
	return out, rows.Err()
}

func (r *WorkspaceRepository) AddMember(ctx context.Context, workspaceID string, m entity.WorkspaceMembership) error {
	return insertMember(ctx, r.db, workspaceID, m)
}

const projectColumns = `id, workspace_id, title, description, status, start_date, due_date, tags, created_by, created_at, updated_at`

type ProjectRepository struct {
	db DB
}

func NewProjectRepository(db DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, p *entity.Project) error {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO projects (workspace_id, title, description, status, start_date, due_date, tags, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at, updated_at
		`, p.WorkspaceID, p.Title, p.Description, string(p.Status), p.StartDate, p.DueDate, p.Tags, p.CreatedBy)
		if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			if isForeignKeyViolation(err) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("insert project: %w", err)
		}
		for _, m := range p.Members {
			if _, err := tx.Exec(ctx, `
				INSERT INTO project_members (project_id, user_id, role) VALUES ($1, $2, $3)
			`, p.ID, m.UserID, string(m.Role)); err != nil {
				return fmt.Errorf("insert project member: %w", err)
			}
		}
		return nil
	})
}

func (r *ProjectRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]entity.Project, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE workspace_id = $1
		ORDER BY created_at DESC
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("select projects: %w", err)
	}
	defer rows.Close()

	out := []entity.Project{}
	index := map[string]int{}
	var ids []string
	for rows.Next() {
		var (
			p      entity.Project
			status string
		)
		if err := rows.Scan(&p.ID, &p.WorkspaceID, &p.Title, &p.Description, &status,
			&p.StartDate, &p.DueDate, &p.Tags, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.Status = entity.ProjectStatus(status)
		index[p.ID] = len(out)
		out = append(out, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select projects: %w", err)
	}
	rows.Close()
	if len(ids) == 0 {
		return out, nil
	}

	mrows, err := r.db.Query(ctx, `
		SELECT project_id, user_id, role FROM project_members WHERE project_id = ANY($1::uuid[])
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("select project members: %w", err)
	}
	defer mrows.Close()
	for mrows.Next() {
		var pid, uid, role string
		if err := mrows.Scan(&pid, &uid, &role); err != nil {
			return nil, fmt.Errorf("scan project member: %w", err)
		}
		i, ok := index[pid]
		if !ok {
			continue
		}
		out[i].Members = append(out[i].Members, entity.ProjectMember{UserID: uid, Role: entity.ProjectRole(role)})
	}
	if err := mrows.Err(); err != nil {
		return nil, fmt.Errorf("select project members: %w", err)
	}
	return out, nil
}

var (
	_ repository.WorkspaceRepository = (*WorkspaceRepository)(nil)
	_ repository.ProjectRepository   = (*ProjectRepository)(nil)
)
