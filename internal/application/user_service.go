package application

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-tracker-api/internal/domain/entity"
	repo "github.com/oksasatya/project-tracker-api/internal/domain/repository"
	"github.com/oksasatya/project-tracker-api/pkg/apperror"
)

const (
	MaxAvatarBytes = 5 << 20

	MsgNotAnImage         = "Avatar must be an image"
	MsgAvatarTooLarge     = "Avatar must be at most 5 MiB"
	MsgSearchUnavailable  = "User search is not available"
	MsgUploadsUnavailable = "Avatar uploads are not available"
)

// ObjectUploader stores a blob and returns its public URL.
type ObjectUploader interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

type UserSearcher interface {
	Search(ctx context.Context, q string, size int) ([]entity.User, error)
}

type UserDeps struct {
	Users    repo.UserRepository
	Sessions SessionStore
	// Uploader, Indexer and Searcher are optional.
	Uploader ObjectUploader
	Indexer  UserIndexer
	Searcher UserSearcher
	Logger   logrus.FieldLogger
}

type UserService struct {
	users    repo.UserRepository
	sessions SessionStore
	uploader ObjectUploader
	indexer  UserIndexer
	searcher UserSearcher
	logger   logrus.FieldLogger
}

func NewUserService(d UserDeps) *UserService {
	s := &UserService{
		users:    d.Users,
		sessions: d.Sessions,
		uploader: d.Uploader,
		indexer:  d.Indexer,
		searcher: d.Searcher,
		logger:   d.Logger,
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	return s
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NotFound(MsgUserNotFound)
		}
		return nil, apperror.Internal("lookup user", err)
	}
	return u, nil
}

type UpdateProfileInput struct {
	Name string
}

// UpdateProfile changes the display name and refreshes the session and directory copies.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		u.Name = in.Name
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, apperror.Internal("update user", err)
	}

	if s.sessions != nil {
		if err := s.sessions.Touch(ctx, u.ID, u.Name); err != nil {
			s.logger.WithError(err).WithField("user_id", u.ID).Warn("session refresh failed")
		}
	}
	s.index(ctx, u)
	return u, nil
}

// UploadAvatar stores an image under avatars/<uid>/ and points profilePicture at it.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, r io.Reader, size int64, filename, contentType string) (*entity.User, error) {
	if s.uploader == nil {
		return nil, apperror.NotFound(MsgUploadsUnavailable)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperror.Validation(MsgNotAnImage)
	}
	if size > MaxAvatarBytes {
		return nil, apperror.Validation(MsgAvatarTooLarge)
	}

	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := path.Join("avatars", userID, uuid.NewString()+ext)
	url, err := s.uploader.Upload(ctx, objectPath, contentType, io.LimitReader(r, MaxAvatarBytes))
	if err != nil {
		return nil, apperror.Internal("upload avatar", err)
	}

	u.ProfilePicture = url
	if err := s.users.Update(ctx, u); err != nil {
		return nil, apperror.Internal("update user", err)
	}
	s.index(ctx, u)
	return u, nil
}

// SearchUsers queries the user directory.
func (s *UserService) SearchUsers(ctx context.Context, q string, size int) ([]entity.User, error) {
	if s.searcher == nil {
		return nil, apperror.NotFound(MsgSearchUnavailable)
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return []entity.User{}, nil
	}
	users, err := s.searcher.Search(ctx, q, size)
	if err != nil {
		return nil, apperror.Internal("search users", err)
	}
	return users, nil
}

func (s *UserService) index(ctx context.Context, u *entity.User) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexUser(ctx, u); err != nil {
		s.logger.WithError(err).WithField("user_id", u.ID).Warn("user directory update failed")
	}
}
