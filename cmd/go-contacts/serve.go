package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/engine"
	"github.com/tartampluch/go-contacts/internal/index"
	"github.com/tartampluch/go-contacts/internal/server"
	"github.com/tartampluch/go-contacts/internal/watch"
)

// syncer regenerates the served documents and the index from the cards
// directory. Calls are serialized.
type syncer struct {
	mu    sync.Mutex
	gen   *engine.Generator
	cfg   engine.SyncConfig
	srv   *server.ContactServer
	store *index.Store
}

func (s *syncer) sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// On failure the previous documents stay served.
	snap, err := s.gen.RunSync(ctx, s.cfg)
	if err != nil {
		return err
	}
	if err := s.srv.Update(snap.ICS, snap.Upcoming); err != nil {
		return err
	}
	if s.store != nil {
		if _, err := s.store.Replace(snap.Entries); err != nil {
			return err
		}
	}
	return nil
}

// tick re-syncs every interval until ctx is cancelled.
func (s *syncer) tick(ctx context.Context, interval time.Duration) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, interval)
	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return
		case <-ticker.C:
			// Cancellation mid-sync is shutdown, not a failure.
			if err := s.sync(ctx); err != nil && ctx.Err() == nil {
				log.Error(config.MsgSyncFailed, config.LogKeyError, err)
			}
		}
	}
}

// newServeCommand publishes the calendar feed and keeps it current.
func newServeCommand(app *cli) *cobra.Command {
	var (
		dir  string
		port string
	)
	cmd := &cobra.Command{
		Use:   config.CmdUseServe,
		Short: config.CmdShortServe,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port == "" {
				port = app.settings.ServerPort
			}
			if err := config.ValidatePort(port); err != nil {
				return err
			}

			store, err := app.openIndex()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			srv := server.NewContactServer(port)
			s := &syncer{
				gen: &engine.Generator{FormatSummary: app.tr.Summary},
				cfg: engine.SyncConfig{
					CardsDir:        app.cardsDir(dir),
					ReminderTrigger: app.settings.ReminderTrigger,
				},
				srv:   srv,
				store: store,
			}
			return serve(cmd.Context(), s, srv, app.settings.RefreshMinutes)
		},
	}
	cmd.Flags().StringVar(&dir, config.FlagDir, "", config.FlagDescDir)
	cmd.Flags().StringVarP(&port, config.FlagPort, "p", "", config.FlagDescPort)
	return cmd
}

// serve performs a first sync, then runs the HTTP server, the directory
// watcher and the refresh ticker until ctx is cancelled or one of them fails.
func serve(ctx context.Context, s *syncer, srv *server.ContactServer, refreshMinutes int) error {
	// Nothing is served until the first sync succeeds.
	if err := s.sync(ctx); err != nil {
		return err
	}

	w, err := watch.New(watch.Config{
		Dir: s.cfg.CardsDir,
		OnChange: func(ctx context.Context, _ []string) error {
			return s.sync(ctx)
		},
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errs := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := w.Run(ctx); err != nil {
			errs <- err
			cancel()
		}
	}()

	if refreshMinutes > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.tick(ctx, time.Duration(refreshMinutes)*time.Minute)
		}()
	}

	// Start blocks; its return stops the watcher and the ticker.
	if err := srv.Start(ctx); err != nil {
		errs <- err
	}
	cancel()
	wg.Wait()

	select {
	case err := <-errs:
		return err
	default:
		slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
		return nil
	}
}
