package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"barfer_analytics/config"
	analyticssvc "barfer_analytics/internal/api/analytics/service"
	"barfer_analytics/internal/database"
	"barfer_analytics/internal/global"
	"barfer_analytics/internal/logger"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// application gom các thành phần dùng chung của mọi subcommand
type application struct {
	cfg           *config.Configuration
	db            *database.Manager
	analytics     *analyticssvc.AnalyticsService
	metrics       *sdkmetric.ManualReader
	meterProvider *sdkmetric.MeterProvider
}

// initLogger khởi tạo và cấu hình logger cho toàn bộ ứng dụng
func initLogger() error {
	// Logger tự đọc environment variables để cấu hình
	if err := logger.Init(nil); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.GetAppLogger().Debug("Logger system initialized successfully")
	return nil
}

// newApplication đọc cấu hình rồi dựng database manager, metrics và analytics service.
// Không kết nối MongoDB ở đây: kết nối được mở ở lần truy vấn đầu tiên.
func newApplication(envFile string) (*application, error) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	cfg, err := config.NewConfig(files...)
	if err != nil {
		return nil, err
	}
	if err := initLogger(); err != nil {
		return nil, err
	}
	global.InitValidator()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)

	db := database.NewManager(cfg)
	svc, err := analyticssvc.NewAnalyticsService(db,
		analyticssvc.WithCollection(cfg.MongoDB_ColOrders),
		analyticssvc.WithTimezone(cfg.Analytics_Timezone),
		analyticssvc.WithSlowQueryThreshold(time.Duration(cfg.Analytics_SlowQueryMs)*time.Millisecond),
		analyticssvc.WithMeterProvider(mp),
	)
	if err != nil {
		_ = mp.Shutdown(context.Background())
		return nil, err
	}

	logger.GetAppLogger().WithFields(logrus.Fields{
		"database":   cfg.MongoDB_DBName,
		"collection": cfg.MongoDB_ColOrders,
		"timezone":   svc.Timezone(),
	}).Info("Initialized analytics service")

	return &application{
		cfg:           cfg,
		db:            db,
		analytics:     svc,
		metrics:       reader,
		meterProvider: mp,
	}, nil
}

// Close đóng kết nối database, metrics và flush logger
func (a *application) Close(ctx context.Context) error {
	err := errors.Join(
		a.db.Shutdown(ctx),
		a.meterProvider.Shutdown(ctx),
	)
	logger.Close()
	return err
}
