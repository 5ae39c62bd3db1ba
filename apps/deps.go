// Package apps holds the wiring shared by the API, the invite worker & the admin CLI.
package apps

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/auth"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/invite"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/upload"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/user"
	emailsvc "github.com/Meghashree-V/smart-surveillance-system-for-campus/services/email"
	logsvc "github.com/Meghashree-V/smart-surveillance-system-for-campus/services/logger"
	mediasvc "github.com/Meghashree-V/smart-surveillance-system-for-campus/services/media"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/storage/database"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/storage/inmem"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/storage/redisdb"
)

// InviteQueueKey is the redis list the API publishes invite jobs to & the worker consumes.
const InviteQueueKey = "campus:invites"

// NewLogger returns a Rollbar logger printing to stdout with prefix. Rollbar reporting is off in debug mode.
func NewLogger(prefix string, conf *core.Config) *logsvc.RollbarLogger {
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, prefix, log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)
	return logger
}

// NewValidator returns a validator with every custom validator & translation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

// OpenDB opens & migrates the configured document store.
func OpenDB(ctx context.Context, conf *core.Config) (*database.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}
	db, err := database.Open(ctx, conf)
	if err != nil {
		return nil, err
	}
	if err = db.Migrate(ctx); err != nil {
		_ = db.Close(ctx)
		return nil, err
	}
	return db, nil
}

// NewMailService prints emails in debug mode and sends them through SendGrid otherwise.
func NewMailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

// LocalMediaDir returns the directory local media are stored in; empty when media go to Cloudinary.
func LocalMediaDir(conf *core.Config) string {
	if conf.Media.Driver != "local" && conf.Media.Driver != "" {
		return ""
	}
	if filepath.IsAbs(conf.Media.Dir) {
		return conf.Media.Dir
	}
	return filepath.Join(conf.WorkDir, conf.Media.Dir)
}

// NewMediaStore returns the configured media store.
func NewMediaStore(conf *core.Config) (upload.MediaStore, error) {
	switch conf.Media.Driver {
	case "local", "":
		return mediasvc.NewLocalStore(LocalMediaDir(conf), conf.Media.BaseURL), nil
	case "cloudinary":
		if conf.Media.CloudName == "" || conf.Media.CloudAPIKey == "" || conf.Media.CloudAPISecret == "" {
			return nil, NewConfigError("cloudinary", "credentials are not configured")
		}
		return mediasvc.NewCloudinaryStore(
			conf.Media.CloudName,
			conf.Media.CloudAPIKey,
			conf.Media.CloudAPISecret,
			conf.Media.CloudFolder,
		), nil
	default:
		return nil, NewConfigError("mediaDriver", fmt.Sprintf("unknown driver %q", conf.Media.Driver))
	}
}

// Backends are the queue, invite receipts & sessions, backed by redis when configured and in-process otherwise.
type Backends struct {
	Redis    *redis.Client // nil when in-process
	Queue    core.Queue
	Receipts invite.ReceiptStore
	Sessions auth.SessionStore
}

func (b Backends) InProcess() bool { return b.Redis == nil }

func (b Backends) Close() error {
	if b.Redis == nil {
		return nil
	}
	return b.Redis.Close()
}

// NewBackends connects to redis when conf.Redis.URL is set.
func NewBackends(ctx context.Context, conf *core.Config, logger core.Logger) (Backends, error) {
	if conf.Redis.URL == "" {
		return Backends{
			Queue:    inmem.NewQueue(100),
			Receipts: inmem.NewReceipts(),
			Sessions: inmem.NewSessions(),
		}, nil
	}

	client, err := redisdb.NewClient(conf.Redis.URL)
	if err != nil {
		return Backends{}, err
	}
	if err = redisdb.Healthy(ctx, client); err != nil {
		_ = client.Close()
		return Backends{}, errors.Wrap(err, "connecting to redis")
	}
	return Backends{
		Redis:    client,
		Queue:    redisdb.NewQueue(client, InviteQueueKey, logger),
		Receipts: redisdb.NewReceipts(client),
		Sessions: redisdb.NewSessions(client),
	}, nil
}

// NewInviteService returns the invite service publishing to & delivering from b.
func NewInviteService(conf *core.Config, mailSvc core.EmailService, b Backends) *invite.Service {
	return invite.NewService(mailSvc, b.Queue, b.Receipts, invite.Options{
		Sender:     conf.InviteSender(),
		TemplateID: conf.Invite.TemplateID,
		LockTTL:    conf.Invite.LockTTL,
	})
}
