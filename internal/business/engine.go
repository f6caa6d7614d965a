package business

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/valkey-io/valkey-go"

	"github.com/chatassist/dialog-manager/internal/config"
	"github.com/chatassist/dialog-manager/pkg/dialog"
	dialogmemory "github.com/chatassist/dialog-manager/pkg/dialog/memory"
	dialogvalkey "github.com/chatassist/dialog-manager/pkg/dialog/valkey"
	"github.com/chatassist/dialog-manager/pkg/export"
	"github.com/chatassist/dialog-manager/pkg/record"
	recordsql "github.com/chatassist/dialog-manager/pkg/record/sql"
	"github.com/chatassist/dialog-manager/pkg/viewcache"
	"github.com/chatassist/dialog-manager/pkg/views"
)

// engine bundles the wired core components shared by the entry points.
type engine struct {
	Manager *dialog.Manager
	Gateway record.Gateway
	Views   *views.Service
}

// initEngine builds the wizard engine: Postgres gateway, wizard store,
// view cache and export sink, all from configuration.
func initEngine(ctx context.Context, cfg *config.Config) (_ *engine, closeFn func(), _ error) {
	connStr, err := config.MakeConnStr(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("making dsn from config: %w", err)
	}

	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, nil, fmt.Errorf("initialising pgxpool connection: %w", err)
	}

	store, closeStore, err := loadDialogStore(cfg)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("loading dialog store: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		closeStore()
		db.Close()
		return nil, nil, fmt.Errorf("loading timezone %q: %w", cfg.Scheduler.Timezone, err)
	}

	gateway := recordsql.NewRepository(db)
	viewsSvc := views.NewService(gateway, viewcache.New(cfg.Cache.TTL))

	var sink export.Sink = export.Noop{}
	if cfg.Export.WebhookURL != "" {
		sink = export.NewWebhook(cfg.Export.WebhookURL, nil)
	}

	manager := dialog.NewManager(store, gateway, viewsSvc, sink,
		dialog.WithLocation(loc),
		dialog.WithIdleTimeout(cfg.Dialog.IdleTimeout),
	)

	closeAll := func() {
		closeStore()
		db.Close()
	}
	return &engine{Manager: manager, Gateway: gateway, Views: viewsSvc}, closeAll, nil
}

func loadDialogStore(cfg *config.Config) (dialog.Store, func(), error) {
	switch cfg.Dialog.Store {
	case "", "memory":
		return dialogmemory.NewStore(), func() {}, nil
	case "valkey":
		client, err := loadValkeyClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		return dialogvalkey.NewStore(client, cfg.ValKey.Prefix, cfg.Dialog.StoreTTL), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown dialog store %q", cfg.Dialog.Store)
	}
}

func loadValkeyClient(cfg *config.Config) (valkey.Client, error) {
	valkeyHost, err := commoncfg.LoadValueFromSourceRef(cfg.ValKey.Host)
	if err != nil {
		return nil, fmt.Errorf("loading valkey host: %w", err)
	}

	valkeyUsername, err := commoncfg.LoadValueFromSourceRef(cfg.ValKey.User)
	if err != nil {
		return nil, fmt.Errorf("loading valkey username: %w", err)
	}

	valkeyPassword, err := commoncfg.LoadValueFromSourceRef(cfg.ValKey.Password)
	if err != nil {
		return nil, fmt.Errorf("loading valkey password: %w", err)
	}

	valkeyOpts := valkey.ClientOption{
		InitAddress: []string{string(valkeyHost)},
		Username:    string(valkeyUsername),
		Password:    string(valkeyPassword),
	}

	client, err := valkey.NewClient(valkeyOpts)
	if err != nil {
		return nil, fmt.Errorf("creating a new valkey client: %w", err)
	}
	return client, nil
}
