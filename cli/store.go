package cli

import (
	"context"
	"fmt"

	"ocm-mapper/internal/config"
	"ocm-mapper/internal/telemetry"
	"ocm-mapper/node"
	"ocm-mapper/store/kvstore"
	"ocm-mapper/store/memstore"
	"ocm-mapper/store/sqlitestore"
)

// openStore opens the configured store with fetches instrumented into the
// command's metrics registry. The returned close func releases it.
func (a *app) openStore(ctx context.Context) (node.Store, *telemetry.Metrics, func() error, error) {
	var (
		s       node.Store
		closeFn = func() error { return nil }
	)

	switch a.cfg.Store.Kind {
	case config.StoreMemory:
		a.logger.Warn("using the in-memory store, nodes are lost on exit")
		s = memstore.New(memstore.WithLogger(a.logger))

	case config.StoreSQLite:
		db, err := sqlitestore.Open(ctx, a.cfg.Store.SQLitePath, sqlitestore.WithLogger(a.logger))
		if err != nil {
			return nil, nil, nil, err
		}

		s, closeFn = db, db.Close

	case config.StoreNATS:
		kv, err := kvstore.Connect(ctx, a.cfg.Store.NATSURL, a.cfg.Store.Bucket, kvstore.WithLogger(a.logger))
		if err != nil {
			return nil, nil, nil, err
		}

		s, closeFn = kv, kv.Close

	default:
		return nil, nil, nil, fmt.Errorf("unknown store kind %q", a.cfg.Store.Kind)
	}

	a.logger.Debug("opened store", "kind", a.cfg.Store.Kind)

	metrics := telemetry.NewMetrics(a.metrics)

	return telemetry.InstrumentStore(s, metrics, telemetry.WithLogger(a.logger)), metrics, closeFn, nil
}
