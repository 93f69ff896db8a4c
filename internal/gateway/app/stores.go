package app

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"kisanmitra/internal/gateway/config"
	"kisanmitra/internal/gateway/repository/media"
	"kisanmitra/internal/gateway/repository/runlog"
)

type gatewayStores struct {
	runs    runlog.Store
	media   media.Store
	closers []func() error
}

func (s *gatewayStores) close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func initStores(cfg *config.Config, logger *zap.Logger) (*gatewayStores, error) {
	stores := &gatewayStores{}

	if dsn := strings.TrimSpace(cfg.RunLog.PostgresDSN); dsn != "" {
		pg, err := runlog.OpenPostgres(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to init run ledger: %w", err)
		}
		stores.runs = pg
		stores.closers = append(stores.closers, pg.Close)
		logger.Info("run ledger: postgres")
	} else {
		stores.runs = runlog.NewMemoryStore(cfg.RunLog.Capacity)
		logger.Info("run ledger: in-memory", zap.Int("capacity", cfg.RunLog.Capacity))
	}

	m, err := chooseMediaStore(cfg, logger)
	if err != nil {
		_ = stores.close()
		return nil, err
	}
	stores.media = m
	return stores, nil
}

func chooseMediaStore(cfg *config.Config, logger *zap.Logger) (media.Store, error) {
	if !cfg.Media.Enabled {
		logger.Info("media archive: in-memory", zap.Int("capacity", cfg.Media.MemoryCapacity))
		return media.NewMemoryStore(cfg.Media.MemoryCapacity), nil
	}
	s3Cfg := media.S3Config{
		Endpoint:  cfg.Media.Endpoint,
		Region:    cfg.Media.Region,
		AccessKey: cfg.Media.AccessKey,
		SecretKey: cfg.Media.SecretKey,
		Bucket:    cfg.Media.Bucket,
		UseSSL:    cfg.Media.UseSSL,
	}
	s3Store, err := media.NewS3Store(s3Cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize media s3 store: %w", err)
	}
	logger.Info("media archive: s3", zap.String("bucket", s3Cfg.Bucket), zap.String("endpoint", s3Cfg.Endpoint))
	return s3Store, nil
}
