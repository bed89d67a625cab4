package cli

import (
	"bufio"
	"context"
	"log"
	"os"
	"time"

	"github.com/dkazakevich/studykeeper/internal/client/config"
	"github.com/dkazakevich/studykeeper/internal/client/remote"
	"github.com/dkazakevich/studykeeper/internal/client/services"
	"github.com/dkazakevich/studykeeper/internal/client/storage"
	syncpkg "github.com/dkazakevich/studykeeper/internal/client/sync"
	"github.com/dkazakevich/studykeeper/internal/logging"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repos       *storage.Repositories
	remote      remote.Client
	study       services.StudyService
	attachments services.AttachmentService
	reconciler  *syncpkg.Reconciler
	Mode        Mode
	reader      *bufio.Reader
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {

	ctx := context.Background()

	repos, err := storage.Open(ctx, c.LocalDBPath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient, err := remote.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	study := services.NewStudyService(repos, c.OwnerID)
	attachments := services.NewAttachmentService(study, apiClient)

	reconciler := syncpkg.NewReconciler(logger, repos.Oplog, repos.Records, apiClient, c.OwnerID,
		syncpkg.WithPolicy(syncpkg.Policy{Base: c.BackoffBase, Cap: c.BackoffCap, MaxAttempts: c.MaxAttempts}),
		syncpkg.WithBatchSize(c.DrainBatchSize),
		syncpkg.WithWorkers(c.SyncWorkers),
		syncpkg.WithCallTimeout(c.CallTimeout),
	)

	return &App{
		config:      c,
		logger:      logger,
		repos:       repos,
		remote:      apiClient,
		study:       study,
		attachments: attachments,
		reconciler:  reconciler,
		Mode:        ModeOffline,
		reader:      bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

// StartOnlineStatusWatcher probes server reachability on the given interval
// and flips the displayed mode. Sync itself is driven by the reconciler and
// keeps retrying regardless of the displayed mode.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.remote.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	go a.reconciler.Run(ctx, a.config.SyncInterval)

	a.Root(ctx)

	if err := a.remote.Close(); err != nil {
		a.logger.Error(ctx, "closing connection", "error", err)
	}
	if err := a.repos.DB.Close(); err != nil {
		a.logger.Error(ctx, "closing database", "error", err)
	}
}
