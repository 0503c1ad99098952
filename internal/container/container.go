package container

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-tracker-api/config"
	"github.com/oksasatya/project-tracker-api/internal/application"
	repo "github.com/oksasatya/project-tracker-api/internal/domain/repository"
	"github.com/oksasatya/project-tracker-api/internal/infrastructure/memory"
	mongoinfra "github.com/oksasatya/project-tracker-api/internal/infrastructure/mongo"
	pginfra "github.com/oksasatya/project-tracker-api/internal/infrastructure/postgres"
	"github.com/oksasatya/project-tracker-api/internal/infrastructure/redisstore"
	"github.com/oksasatya/project-tracker-api/internal/infrastructure/screening"
	"github.com/oksasatya/project-tracker-api/internal/infrastructure/search"
	"github.com/oksasatya/project-tracker-api/pkg/helpers"
	"github.com/oksasatya/project-tracker-api/pkg/mailer"
	mailtpl "github.com/oksasatya/project-tracker-api/pkg/mailer/templates"
)

// Container holds the constructed components shared by router modules.
// Build fills it from config; tests may populate the fields directly and call WireServices.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	Redis  *redis.Client

	JWT     *helpers.JWTManager
	Cookies *helpers.Manager

	Users      repo.UserRepository
	Tokens     repo.VerificationRepository
	Workspaces repo.WorkspaceRepository
	Projects   repo.ProjectRepository
	Sessions   *redisstore.SessionStore
	Notifier   application.Notifier
	Screener   *screening.Screener

	// Optional; nil disables the dependent endpoints.
	UserIndex *search.UserIndex
	Uploader  *helpers.GCSUploader

	AuthService      *application.AuthService
	UserService      *application.UserService
	WorkspaceService *application.WorkspaceService

	closers []func()
}

// Build connects every backing service named by cfg and wires the services.
// On error, whatever was already opened is closed.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (c *Container, err error) {
	c = &Container{
		Config:  cfg,
		Logger:  logger,
		JWT:     helpers.NewJWTManager(cfg.JWTSecret),
		Cookies: helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure),
	}
	defer func() {
		if err != nil {
			c.Close()
			c = nil
		}
	}()

	c.Redis = helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	c.onClose(func() { _ = c.Redis.Close() })
	if err = c.Redis.Ping(ctx).Err(); err != nil {
		return c, fmt.Errorf("redis: %w", err)
	}
	c.Sessions = redisstore.NewSessionStore(c.Redis, cfg.SessionTTL)

	if err = c.buildStore(ctx); err != nil {
		return c, err
	}
	if err = c.buildNotifier(); err != nil {
		return c, err
	}

	c.Screener = screening.New(screening.Options{
		ExtraDisposable: cfg.ExtraDisposableDomains(),
		CheckMX:         cfg.EmailMXCheck,
		Redis:           c.Redis,
		Logger:          logger,
	})

	if err = c.buildSearch(ctx); err != nil {
		return c, err
	}
	if err = c.buildUploads(ctx); err != nil {
		return c, err
	}

	c.WireServices()
	return c, nil
}

func (c *Container) buildStore(ctx context.Context) error {
	cfg := c.Config
	switch cfg.StoreDriver {
	case "postgres":
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		c.onClose(pool.Close)
		c.Users = pginfra.NewUserRepository(pool)
		c.Tokens = pginfra.NewVerificationRepository(pool)
		c.Workspaces = pginfra.NewWorkspaceRepository(pool)
		c.Projects = pginfra.NewProjectRepository(pool)
	case "mongo":
		client, err := mongoinfra.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return fmt.Errorf("mongo: %w", err)
		}
		c.onClose(func() { _ = client.Disconnect(context.Background()) })
		db := client.Database(cfg.MongoDatabase)
		if err := mongoinfra.EnsureIndexes(ctx, db); err != nil {
			return err
		}
		c.Users = mongoinfra.NewUserRepository(db)
		c.Tokens = mongoinfra.NewVerificationRepository(db)
		c.Workspaces = mongoinfra.NewWorkspaceRepository(db)
		c.Projects = mongoinfra.NewProjectRepository(db)
	case "memory":
		c.Logger.Warn("STORE_DRIVER=memory: accounts are lost on restart")
		c.Users = memory.NewUserRepository()
		c.Tokens = memory.NewVerificationRepository()
		c.Workspaces = memory.NewWorkspaceRepository()
		c.Projects = memory.NewProjectRepository()
	default:
		return fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	return nil
}

func (c *Container) buildNotifier() error {
	cfg := c.Config
	nc := mailer.NotifierConfig{
		Enabled:  cfg.MailSendEnabled,
		Delivery: cfg.MailDelivery,
		Brand: mailtpl.Brand{
			AppName:     cfg.AppName,
			CompanyName: cfg.CompanyName,
			SupportURL:  cfg.SupportURL,
		},
		Logger: c.Logger,
	}

	if nc.Enabled {
		switch cfg.MailDelivery {
		case mailer.DeliveryDirect:
			mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
			if mg.Configured() {
				nc.Sender = mg
			} else if cfg.Env == "development" {
				c.Logger.Warn("mailgun not configured; emails are logged instead of sent")
				nc.Enabled = false
			} else {
				return fmt.Errorf("mailgun not configured")
			}
		case mailer.DeliveryQueue:
			pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
			if err != nil {
				return fmt.Errorf("rabbitmq: %w", err)
			}
			c.onClose(pub.Close)
			nc.Publisher = pub
		}
	}

	n, err := mailer.NewNotifier(nc)
	if err != nil {
		return err
	}
	c.Notifier = n
	return nil
}

func (c *Container) buildSearch(ctx context.Context) error {
	cfg := c.Config
	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		return fmt.Errorf("elasticsearch: %w", err)
	}
	c.UserIndex = search.NewUserIndex(es, cfg.ESUsersIndex)
	if c.UserIndex == nil {
		return nil
	}
	if err := c.UserIndex.EnsureIndex(ctx); err != nil {
		// search stays optional when the cluster is unreachable at boot
		c.Logger.WithError(err).Warn("user index unavailable; search disabled")
		c.UserIndex = nil
	}
	return nil
}

func (c *Container) buildUploads(ctx context.Context) error {
	cfg := c.Config
	if cfg.GCSBucket == "" {
		return nil
	}
	client, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
	if err != nil {
		return fmt.Errorf("gcs: %w", err)
	}
	c.onClose(func() { _ = client.Close() })
	c.Uploader = helpers.NewGCSUploader(client, cfg.GCSBucket)
	return nil
}

// WireServices builds the application services from the current fields.
func (c *Container) WireServices() {
	cfg := c.Config

	auth := application.AuthDeps{
		Users:    c.Users,
		Tokens:   c.Tokens,
		Signer:   c.JWT,
		Notifier: c.Notifier,
		Sessions: c.Sessions,
		Logger:   c.Logger,
		Config: application.AuthConfig{
			VerifyTTL:   cfg.VerifyTokenTTL,
			ResetTTL:    cfg.ResetTokenTTL,
			SessionTTL:  cfg.SessionTTL,
			BcryptCost:  cfg.BcryptCost,
			FrontendURL: cfg.FrontendURL,
		},
	}
	user := application.UserDeps{
		Users:    c.Users,
		Sessions: c.Sessions,
		Logger:   c.Logger,
	}

	// typed nils must not reach the optional interface fields
	if c.Screener != nil {
		auth.Screener = c.Screener
	}
	if c.UserIndex != nil {
		auth.Indexer = c.UserIndex
		user.Indexer = c.UserIndex
		user.Searcher = c.UserIndex
	}
	if c.Uploader != nil {
		user.Uploader = c.Uploader
	}

	c.AuthService = application.NewAuthService(auth)
	c.UserService = application.NewUserService(user)
	c.WorkspaceService = application.NewWorkspaceService(application.WorkspaceDeps{
		Workspaces: c.Workspaces,
		Projects:   c.Projects,
		Users:      c.Users,
		Logger:     c.Logger,
	})
}

func (c *Container) onClose(fn func()) { c.closers = append(c.closers, fn) }

// Close releases connections in reverse order of opening.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
