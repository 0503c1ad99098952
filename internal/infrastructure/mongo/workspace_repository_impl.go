package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/oksasatya/project-tracker-api/internal/domain/entity"
	"github.com/oksasatya/project-tracker-api/internal/domain/repository"
)

type memberDoc struct {
	User     bson.ObjectID `bson:"user"`
	Role     string        `bson:"role"`
	JoinedAt time.Time     `bson:"joinedAt"`
}

type workspaceDoc struct {
	ID          bson.ObjectID `bson:"_id"`
	Name        string        `bson:"name"`
	Description string        `bson:"description,omitempty"`
	Color       string        `bson:"color"`
	Owner       bson.ObjectID `bson:"owner"`
	Members     []memberDoc   `bson:"members"`
	CreatedAt   time.Time     `bson:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt"`
}

func (d *workspaceDoc) toEntity() entity.Workspace {
	w := entity.Workspace{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Color:       d.Color,
		OwnerID:     d.Owner.Hex(),
		Members:     make([]entity.WorkspaceMembership, 0, len(d.Members)),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	for _, m := range d.Members {
		w.Members = append(w.Members, entity.WorkspaceMembership{UserID: m.User.Hex(), Role: entity.WorkspaceRole(m.Role), JoinedAt: m.JoinedAt})
	}
	return w
}

func newMemberDoc(m entity.WorkspaceMembership) (memberDoc, error) {
	uid, ok := objectID(m.UserID)
	if !ok {
		return memberDoc{}, fmt.Errorf("invalid member id %q", m.UserID)
	}
	return memberDoc{User: uid, Role: string(m.Role), JoinedAt: m.JoinedAt.UTC().Truncate(time.Millisecond)}, nil
}

type WorkspaceRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewWorkspaceRepository(db *mongo.Database) *WorkspaceRepository {
	return &WorkspaceRepository{
		coll: db.Collection(workspacesCollection),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *WorkspaceRepository) Create(ctx context.Context, w *entity.Workspace) error {
	owner, ok := objectID(w.OwnerID)
	if !ok {
		return fmt.Errorf("insert workspace: invalid owner id %q", w.OwnerID)
	}
	now := r.now().Truncate(time.Millisecond)
	doc := workspaceDoc{
		ID:          bson.NewObjectID(),
		Name:        w.Name,
		Description: w.Description,
		Color:       w.Color,
		Owner:       owner,
		Members:     make([]memberDoc, 0, len(w.Members)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, m := range w.Members {
		md, err := newMemberDoc(m)
		if err != nil {
			return fmt.Errorf("insert workspace: %w", err)
		}
		doc.Members = append(doc.Members, md)
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert workspace: %w", err)
	}
	w.ID = doc.ID.Hex()
	w.CreatedAt, w.UpdatedAt = now, now
	return nil
}

func (r *WorkspaceRepository) GetByID(ctx context.Context, id string) (*entity.Workspace, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	var doc workspaceDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find workspace: %w", err)
	}
	w := doc.toEntity()
	return &w, nil
}

func (r *WorkspaceRepository) ListForUser(ctx context.Context, userID string) ([]entity.Workspace, error) {
	out := []entity.Workspace{}
	uid, ok := objectID(userID)
	if !ok {
		return out, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"members.user": uid}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find workspaces: %w", err)
	}
	var docs []workspaceDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode workspaces: %w", err)
	}
	for i := range docs {
		out = append(out, docs[i].toEntity())
	}
	return out, nil
}

// AddMember pushes m only when the user is not yet listed, so concurrent
// invites for one user store a single entry.
func (r *WorkspaceRepository) AddMember(ctx context.Context, workspaceID string, m entity.WorkspaceMembership) error {
	oid, ok := objectID(workspaceID)
	if !ok {
		return repository.ErrNotFound
	}
	md, err := newMemberDoc(m)
	if err != nil {
		return repository.ErrNotFound
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "members.user": bson.M{"$ne": md.User}},
		bson.M{"$push": bson.M{"members": md}, "$set": bson.M{"updatedAt": r.now()}},
	)
	if err != nil {
		return fmt.Errorf("add workspace member: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("add workspace member: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return repository.ErrDuplicate
}

type projectMemberDoc struct {
	User bson.ObjectID `bson:"user"`
	Role string        `bson:"role"`
}

type projectDoc struct {
	ID          bson.ObjectID      `bson:"_id"`
	Workspace   bson.ObjectID      `bson:"workspace"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	Status      string             `bson:"status"`
	StartDate   time.Time          `bson:"startDate"`
	DueDate     time.Time          `bson:"dueDate"`
	Members     []projectMemberDoc `bson:"members"`
	Tags        []string           `bson:"tags"`
	CreatedBy   bson.ObjectID      `bson:"createdBy"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *projectDoc) toEntity() entity.Project {
	p := entity.Project{
		ID:          d.ID.Hex(),
		WorkspaceID: d.Workspace.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Status:      entity.ProjectStatus(d.Status),
		StartDate:   d.StartDate,
		DueDate:     d.DueDate,
		Members:     make([]entity.ProjectMember, 0, len(d.Members)),
		Tags:        d.Tags,
		CreatedBy:   d.CreatedBy.Hex(),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	for _, m := range d.Members {
		p.Members = append(p.Members, entity.ProjectMember{UserID: m.User.Hex(), Role: entity.ProjectRole(m.Role)})
	}
	return p
}

type ProjectRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{
		coll: db.Collection(projectsCollection),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *ProjectRepository) Create(ctx context.Context, p *entity.Project) error {
	ws, ok := objectID(p.WorkspaceID)
	if !ok {
		return repository.ErrNotFound
	}
	creator, ok := objectID(p.CreatedBy)
	if !ok {
		return fmt.Errorf("insert project: invalid creator id %q", p.CreatedBy)
	}
	now := r.now().Truncate(time.Millisecond)
	doc := projectDoc{
		ID:          bson.NewObjectID(),
		Workspace:   ws,
		Title:       p.Title,
		Description: p.Description,
		Status:      string(p.Status),
		StartDate:   p.StartDate.UTC().Truncate(time.Millisecond),
		DueDate:     p.DueDate.UTC().Truncate(time.Millisecond),
		Members:     make([]projectMemberDoc, 0, len(p.Members)),
		Tags:        p.Tags,
		CreatedBy:   creator,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	for _, m := range p.Members {
		uid, ok := objectID(m.UserID)
		if !ok {
			return fmt.Errorf("insert project: invalid member id %q", m.UserID)
		}
		doc.Members = append(doc.Members, projectMemberDoc{User: uid, Role: string(m.Role)})
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	p.ID = doc.ID.Hex()
	p.CreatedAt, p.UpdatedAt = now, now
	return nil
}

func (r *ProjectRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]entity.Project, error) {
	out := []entity.Project{}
	ws, ok := objectID(workspaceID)
	if !ok {
		return out, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"workspace": ws}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find projects: %w", err)
	}
	var docs []projectDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	for i := range docs {
		out = append(out, docs[i].toEntity())
	}
	return out, nil
}

var (
	_ repository.WorkspaceRepository = (*WorkspaceRepository)(nil)
	_ repository.ProjectRepository   = (*ProjectRepository)(nil)
)
