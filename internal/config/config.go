package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel      string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort      string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort    string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	AdvertiseHost string `yaml:"advertise-host" env:"ADVERTISE_HOST" env-default:"localhost"`
	Redis         Redis  `yaml:"redis"`
	Game          Game   `yaml:"game"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Game struct {
	PlayerName                     string        `yaml:"player-name" env:"PLAYER_NAME"`
	Mode                           string        `yaml:"mode" env:"GAME_MODE" env-default:"local"`
	AIDifficulty                   string        `yaml:"ai-difficulty" env:"AI_DIFFICULTY" env-default:"normal"`
	AIDelay                        time.Duration `yaml:"ai-delay" env:"AI_DELAY" env-default:"500ms"`
	TurnTimeLimit                  time.Duration `yaml:"turn-time-limit" env:"TURN_TIME_LIMIT" env-default:"30s"`
	TurnTick                       time.Duration `yaml:"turn-tick" env:"TURN_TICK" env-default:"1s"`
	ConnectTimeout                 time.Duration `yaml:"connect-timeout" env:"CONNECT_TIMEOUT" env-default:"15s"`
	OpenTimeout                    time.Duration `yaml:"open-timeout" env:"OPEN_TIMEOUT" env-default:"5s"`
	SendTimeout                    time.Duration `yaml:"send-timeout" env:"SEND_TIMEOUT" env-default:"5s"`
	RoomTTL                        time.Duration `yaml:"room-ttl" env:"ROOM_TTL" env-default:"1h"`
	VerifyRemoteMoves              bool          `yaml:"verify-remote-moves" env:"VERIFY_REMOTE_MOVES" env-default:"false"`
	StrategicExcludeCornerAdjacent bool          `yaml:"strategic-exclude-corner-adjacent" env:"STRATEGIC_EXCLUDE_CORNER_ADJACENT" env-default:"false"`
	FallbackToLocalOnDisconnect    bool          `yaml:"fallback-to-local-on-disconnect" env:"FALLBACK_TO_LOCAL_ON_DISCONNECT" env-default:"false"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads the file at path and applies environment overrides.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

func (that *Config) GetSocketAddr() string {
	return fmt.Sprintf("%s:%s", that.AdvertiseHost, that.SocketPort)
}
