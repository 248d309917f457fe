package config

import (
	"fmt"
	"strings"
)

// StorageMode selects the durable local storage backend.
type StorageMode string

const (
	// StorageModeFile persists state to JSON files under a local directory.
	StorageModeFile StorageMode = "file"
	// StorageModeRedis persists state to a Redis instance, for deployments
	// where the client runs beside one.
	StorageModeRedis StorageMode = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for StorageMode.
func (m *StorageMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "file", "redis":
		*m = StorageMode(v)
		return nil
	default:
		return fmt.Errorf("invalid StorageMode: %q (valid options: file, redis)", v)
	}
}

// StorageConfig contains durable local storage configuration. The credential
// pair and the offline queue share one backend.
type StorageConfig struct {
	// Mode determines which storage backend to use.
	Mode StorageMode `env:"MODE" envDefault:"file"`

	// Dir is the state directory for file mode. Empty means a "vitatrack"
	// directory under the user config dir.
	Dir string `env:"DIR" envDefault:""`

	// KeyPrefix namespaces keys in redis mode.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"vitatrack:"`
}

// RedisConfig contains Redis connection configuration for redis storage mode.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}
