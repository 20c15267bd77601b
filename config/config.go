package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"github.com/DataWorkbench/loader"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// The config file path used by Load config
var FilePath string

const (
	envPrefix = "PAIMON_WEB"
)

type GatewayConfig struct {
	Address           string        `json:"address"            yaml:"address"            env:"ADDRESS"            validate:"required"`
	Port              int           `json:"port"               yaml:"port"               env:"PORT"               validate:"gte=1,lte=65535"`
	APIVersion        string        `json:"api_version"        yaml:"api_version"        env:"API_VERSION"        validate:"required"`
	RequestTimeout    time.Duration `json:"request_timeout"    yaml:"request_timeout"    env:"REQUEST_TIMEOUT"    validate:"gte=0"`
	SubmitTimeout     time.Duration `json:"submit_timeout"     yaml:"submit_timeout"     env:"SUBMIT_TIMEOUT"     validate:"gte=0"`
	ConfigureTimeout  time.Duration `json:"configure_timeout"  yaml:"configure_timeout"  env:"CONFIGURE_TIMEOUT"  validate:"gte=0"`
	PollInterval      time.Duration `json:"poll_interval"      yaml:"poll_interval"      env:"POLL_INTERVAL"      validate:"gte=0"`
	PollTimeout       time.Duration `json:"poll_timeout"       yaml:"poll_timeout"       env:"POLL_TIMEOUT"       validate:"gte=0"`
	MaxPollAttempts   int           `json:"max_poll_attempts"  yaml:"max_poll_attempts"  env:"MAX_POLL_ATTEMPTS"  validate:"gte=0"`
	HeartbeatInterval time.Duration `json:"heartbeat_interval" yaml:"heartbeat_interval" env:"HEARTBEAT_INTERVAL" validate:"gt=0"`
	SessionName       string        `json:"session_name"       yaml:"session_name"       env:"SESSION_NAME"`
	InitStatements    []string      `json:"init_statements"    yaml:"init_statements"    env:"INIT_STATEMENTS"`
}

type YarnConfig struct {
	FlinkHome        string        `json:"flink_home"         yaml:"flink_home"         env:"FLINK_HOME"         validate:"required"`
	FlinkConfigPath  string        `json:"flink_config_path"  yaml:"flink_config_path"  env:"FLINK_CONFIG_PATH"`
	HadoopConfigPath string        `json:"hadoop_config_path" yaml:"hadoop_config_path" env:"HADOOP_CONFIG_PATH"`
	PollInterval     time.Duration `json:"poll_interval"      yaml:"poll_interval"      env:"POLL_INTERVAL"      validate:"gte=0"`
	PollTimeout      time.Duration `json:"poll_timeout"       yaml:"poll_timeout"       env:"POLL_TIMEOUT"       validate:"gte=0"`
}

type DatabaseConfig struct {
	Driver string `json:"driver" yaml:"driver" env:"DRIVER" validate:"oneof=sqlite postgres"`
	DSN    string `json:"dsn"    yaml:"dsn"    env:"DSN"    validate:"required"`
}

type GRPCServerConfig struct {
	Address string `json:"address" yaml:"address" env:"ADDRESS" validate:"required"`
}

// Config is the configuration settings for the paimon web job manager
type Config struct {
	LogLevel   int8              `json:"log_level"   yaml:"log_level"   env:"LOG_LEVEL"   validate:"gte=1,lte=5"`
	Gateway    *GatewayConfig    `json:"gateway"     yaml:"gateway"     env:"GATEWAY"     validate:"required"`
	Yarn       *YarnConfig       `json:"yarn"        yaml:"yarn"        env:"YARN"        validate:"required"`
	Database   *DatabaseConfig   `json:"database"    yaml:"database"    env:"DATABASE"    validate:"required"`
	GRPCServer *GRPCServerConfig `json:"grpc_server" yaml:"grpc_server" env:"GRPC_SERVER" validate:"required"`
}

// Default returns the settings used for anything the file and the
// environment leave out.
func Default() *Config {
	return &Config{
		LogLevel: 2,
		Gateway: &GatewayConfig{
			Address:           "127.0.0.1",
			Port:              8083,
			APIVersion:        "v2",
			RequestTimeout:    time.Second * 60,
			ConfigureTimeout:  time.Second * 5,
			PollInterval:      time.Millisecond * 1000,
			HeartbeatInterval: time.Second * 30,
		},
		Yarn: &YarnConfig{
			FlinkHome:    "/opt/flink",
			PollInterval: time.Second,
		},
		Database: &DatabaseConfig{
			Driver: "sqlite",
			DSN:    "paimon-web.db",
		},
		GRPCServer: &GRPCServerConfig{
			Address: "0.0.0.0:9115",
		},
	}
}

func loadFromFile(cfg *Config) (err error) {
	if FilePath == "" {
		return
	}

	fmt.Printf("%s load config from file <%s>\n", time.Now().Format(time.RFC3339Nano), FilePath)

	var b []byte
	b, err = ioutil.ReadFile(FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return
	}

	err = yaml.Unmarshal(b, cfg)
	if err != nil {
		fmt.Println("parse config file error:", err)
	}
	return
}

// Load loads the defaults, then the file at FilePath, then the environment.
func Load() (cfg *Config, err error) {
	cfg = Default()

	if err = loadFromFile(cfg); err != nil {
		return
	}

	l := loader.New(
		loader.WithPrefix(envPrefix),
		loader.WithTagName("env"),
		loader.WithOverride(true),
	)
	if err = l.Load(cfg); err != nil {
		return
	}

	// output the config content
	fmt.Printf("%s pid=%d the latest configuration: \n", time.Now().Format(time.RFC3339Nano), os.Getpid())
	fmt.Println("")
	b, _ := yaml.Marshal(cfg)
	fmt.Println(string(b))

	validate := validator.New()
	if err = validate.Struct(cfg); err != nil {
		return
	}

	return
}
