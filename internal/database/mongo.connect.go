package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"barfer_analytics/config"
	"barfer_analytics/internal/common"
	"barfer_analytics/internal/logger"
	"barfer_analytics/internal/registry"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Manager quản lý kết nối MongoDB của process.
// Client chỉ được tạo ở lần Acquire đầu tiên thành công, sau đó dùng lại.
// Manager được truyền vào nơi cần dùng, không có biến global.
type Manager struct {
	cfg *config.Configuration

	mu     sync.Mutex
	client *mongo.Client

	collections *registry.Registry[*mongo.Collection]

	// connect cho phép test thay thế mongo.Connect
	connect func(ctx context.Context, opts ...*options.ClientOptions) (*mongo.Client, error)
}

// NewManager tạo Manager, chưa kết nối.
func NewManager(cfg *config.Configuration) *Manager {
	return &Manager{
		cfg:         cfg,
		collections: registry.NewRegistry[*mongo.Collection](),
		connect:     mongo.Connect,
	}
}

// clientOptions dựng options cho client từ cấu hình
func (m *Manager) clientOptions() *options.ClientOptions {
	connectTimeout := time.Duration(m.cfg.MongoDB_ConnectTimeout) * time.Second
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}
	socketTimeout := time.Duration(m.cfg.MongoDB_SocketTimeout) * time.Second
	if socketTimeout <= 0 {
		socketTimeout = 30 * time.Second
	}

	opts := options.Client().ApplyURI(m.cfg.MongoDB_ConnectionURI).
		SetConnectTimeout(connectTimeout). // Timeout khi kết nối
		SetSocketTimeout(socketTimeout).   // Timeout khi gửi nhận dữ liệu (aggregate có thể lâu)
		SetReadPreference(readpref.PrimaryPreferred())

	if m.cfg.MongoDB_MaxPoolSize > 0 {
		opts.SetMaxPoolSize(m.cfg.MongoDB_MaxPoolSize)
	}
	if m.cfg.MongoDB_MinPoolSize > 0 {
		opts.SetMinPoolSize(m.cfg.MongoDB_MinPoolSize)
	}
	return opts
}

// Acquire trả về client đã kết nối. Thiếu MONGODB_CONNECTION_URI trả về
// common.ErrMissingConnectionURI ở mọi lần gọi. Kết nối lỗi không được nhớ lại,
// lần gọi sau sẽ thử kết nối lại.
func (m *Manager) Acquire(ctx context.Context) (*mongo.Client, error) {
	if m.cfg == nil || m.cfg.MongoDB_ConnectionURI == "" {
		return nil, common.ErrMissingConnectionURI
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		return m.client, nil
	}

	client, err := m.connect(ctx, m.clientOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Kiểm tra kết nối
	ctxPing, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	defer cancelPing()
	if err := client.Ping(ctxPing, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.GetAppLogger().WithField("database", m.cfg.MongoDB_DBName).Info("Successfully connected to MongoDB")
	m.client = client
	return client, nil
}

// Database trả về database cấu hình trong MONGODB_DBNAME
func (m *Manager) Database(ctx context.Context) (*mongo.Database, error) {
	client, err := m.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(m.cfg.MongoDB_DBName), nil
}

// Collection trả về collection handle theo tên, handle được memo trong registry.
func (m *Manager) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	if col, ok := m.collections.Get(name); ok {
		return col, nil
	}
	db, err := m.Database(ctx)
	if err != nil {
		return nil, err
	}
	return m.collections.GetOrCreate(name, func() (*mongo.Collection, error) {
		return db.Collection(name), nil
	})
}

// Ping kiểm tra kết nối, dùng cho /health
func (m *Manager) Ping(ctx context.Context) error {
	client, err := m.Acquire(ctx)
	if err != nil {
		return err
	}
	return client.Ping(ctx, readpref.PrimaryPreferred())
}

// Connected cho biết đã có client hay chưa
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client != nil
}

// Shutdown đóng kết nối nếu có và xoá các collection handle. Gọi nhiều lần không lỗi.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, _ = m.collections.ClearAll(nil)
	if m.client == nil {
		return nil
	}

	client := m.client
	m.client = nil
	if err := client.Disconnect(ctx); err != nil {
		logger.GetAppLogger().WithError(err).Error("Failed to disconnect MongoDB client")
		return err
	}
	logger.GetAppLogger().Info("Successfully disconnected from MongoDB")
	return nil
}
