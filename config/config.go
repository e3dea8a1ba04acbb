package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng analytics.
// MongoDB_ConnectionURI không bắt buộc khi parse: thiếu URI là lỗi cấu hình
// được trả về ở lần truy cập database đầu tiên.
type Configuration struct {
	Address                string `env:"ADDRESS" envDefault:":8080"`                                     // Địa chỉ server
	MongoDB_ConnectionURI  string `env:"MONGODB_CONNECTION_URI"`                                         // URL kết nối cơ sở dữ liệu
	MongoDB_DBName         string `env:"MONGODB_DBNAME" envDefault:"barfer"`                             // Tên cơ sở dữ liệu chứa orders
	MongoDB_ColOrders      string `env:"MONGODB_COLLECTION_ORDERS" envDefault:"orders"`                  // Tên collection đơn hàng
	MongoDB_MaxPoolSize    uint64 `env:"MONGODB_MAX_POOL_SIZE" envDefault:"50"`                          // Số connection tối đa
	MongoDB_MinPoolSize    uint64 `env:"MONGODB_MIN_POOL_SIZE" envDefault:"0"`                           // Số connection giữ sẵn
	MongoDB_ConnectTimeout int    `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"5"`                         // Giây
	MongoDB_SocketTimeout  int    `env:"MONGODB_SOCKET_TIMEOUT" envDefault:"30"`                         // Giây
	Analytics_Timezone     string `env:"ANALYTICS_TIMEZONE" envDefault:"America/Argentina/Buenos_Aires"` // Múi giờ cắt chu kỳ ngày/tuần/tháng
	Analytics_SlowQueryMs  int    `env:"ANALYTICS_SLOW_QUERY_MS" envDefault:"2000"`                      // Ngưỡng log query chậm (0 = tắt)
	CORS_Origins           string `env:"CORS_ORIGINS" envDefault:"*"`                                    // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials  bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"`                      // Cho phép gửi credentials
	RateLimit_Max          int    `env:"RATE_LIMIT_MAX" envDefault:"100"`                                // Số request tối đa trong window (0 = tắt)
	RateLimit_Window       int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`                              // Thời gian window (giây)
	RateLimit_Enabled      bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`                           // Bật/tắt rate limiting
	Server_ShutdownTimeout int    `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"15"`                        // Giây chờ khi dừng server
}

// getEnvPath trả về đường dẫn file env theo GO_ENV, tìm ngược lên thư mục cha.
// Trả về "" nếu không có thư mục config/env.
func getEnvPath() string {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", env))
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig đọc cấu hình: load file env (nếu có) rồi parse environment variables.
// files cho phép chỉ định file env cụ thể thay vì tự tìm theo GO_ENV.
func NewConfig(files ...string) (*Configuration, error) {
	if len(files) == 0 {
		if envPath := getEnvPath(); envPath != "" {
			files = []string{envPath}
		}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		// godotenv.Load không ghi đè biến đã có trong môi trường
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
