package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/project-tracker-api/internal/domain/entity"
	"github.com/oksasatya/project-tracker-api/internal/domain/repository"
)

type WorkspaceRepository struct {
	mu         sync.RWMutex
	workspaces map[string]*entity.Workspace
}

func NewWorkspaceRepository() *WorkspaceRepository {
	return &WorkspaceRepository{workspaces: map[string]*entity.Workspace{}}
}

func cloneWorkspace(w *entity.Workspace) entity.Workspace {
	cp := *w
	cp.Members = slices.Clone(w.Members)
	return cp
}

func (r *WorkspaceRepository) Create(_ context.Context, w *entity.Workspace) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	w.ID = uuid.NewString()
	w.CreatedAt, w.UpdatedAt = now, now
	cp := cloneWorkspace(w)
	r.workspaces[w.ID] = &cp
	return nil
}

func (r *WorkspaceRepository) GetByID(_ context.Context, id string) (*entity.Workspace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workspaces[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := cloneWorkspace(w)
	return &cp, nil
}

func (r *WorkspaceRepository) ListForUser(_ context.Context, userID string) ([]entity.Workspace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []entity.Workspace{}
	for _, w := range r.workspaces {
		if _, ok := w.RoleOf(userID); ok {
			out = append(out, cloneWorkspace(w))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *WorkspaceRepository) AddMember(_ context.Context, workspaceID string, m entity.WorkspaceMembership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workspaces[workspaceID]
	if !ok {
		return repository.ErrNotFound
	}
	if _, dup := w.RoleOf(m.UserID); dup {
		return repository.ErrDuplicate
	}
	w.Members = append(w.Members, m)
	w.UpdatedAt = time.Now().UTC()
	return nil
}

type ProjectRepository struct {
	mu       sync.RWMutex
	projects map[string]*entity.Project
}

func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{projects: map[string]*entity.Project{}}
}

func cloneProject(p *entity.Project) entity.Project {
	cp := *p
	cp.Members = slices.Clone(p.Members)
	cp.Tags = slices.Clone(p.Tags)
	return cp
}

func (r *ProjectRepository) Create(_ context.Context, p *entity.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now
	cp := cloneProject(p)
	r.projects[p.ID] = &cp
	return nil
}

func (r *ProjectRepository) ListByWorkspace(_ context.Context, workspaceID string) ([]entity.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []entity.Project{}
	for _, p := range r.projects {
		if p.WorkspaceID == workspaceID {
			out = append(out, cloneProject(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

var (
	_ repository.WorkspaceRepository = (*WorkspaceRepository)(nil)
	_ repository.ProjectRepository   = (*ProjectRepository)(nil)
)
