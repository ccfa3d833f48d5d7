// Package config loads the service configuration. Values are layered with the
// priority CLI flags > environment > JSON config file > defaults.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	ConfigFile            string        `env:"CONFIG" json:"-"`
	RunAddr               string        `env:"SERVER_ADDRESS" json:"server_address" validate:"hostname_port"`
	GRPCAddr              string        `env:"GRPC_SERVER_ADDRESS" json:"grpc_server_address" validate:"omitempty,hostname_port"`
	LogLevel              string        `env:"LOG_LEVEL" json:"log_level" validate:"loglevel"`
	MongoURI              string        `env:"MONGODB_URL" json:"mongodb_url"`
	MongoDatabase         string        `env:"MONGODB_DATABASE" json:"mongodb_database" validate:"required"`
	DatabaseDSN           string        `env:"DATABASE_DSN" json:"database_dsn"`
	DBFileName            string        `env:"FILE_STORAGE_PATH" json:"file_storage_path" validate:"filepath"`
	DBConnectionTimeout   time.Duration `env:"DB_CONNECTION_TIMEOUT" json:"db_connection_timeout" validate:"gt=0"`
	AuthCookieName        string        `env:"AUTH_COOKIE_NAME" json:"auth_cookie_name" validate:"required"`
	AuthSigningSecretKey  string        `env:"AUTH_SIGNING_SECRET_KEY" json:"auth_signing_secret_key" validate:"omitempty,base64url"`
	TrustedSubnet         string        `env:"TRUSTED_SUBNET" json:"trusted_subnet" validate:"omitempty,cidr"`
	ActivityLogPath       string        `env:"ACTIVITY_LOG_PATH" json:"activity_log_path" validate:"filepath"`
	ActivityFlushInterval time.Duration `env:"ACTIVITY_FLUSH_INTERVAL" json:"activity_flush_interval" validate:"gt=0"`
	ChannelCapacity       int           `env:"CHANNEL_CAPACITY" json:"channel_capacity" validate:"gt=0"`
}

var defaultConfig = Config{
	RunAddr:               ":8080",
	GRPCAddr:              ":3200",
	LogLevel:              "info",
	MongoDatabase:         "travel_journal_db",
	DBConnectionTimeout:   10 * time.Second,
	AuthCookieName:        "auth",
	ActivityFlushInterval: 5 * time.Second,
	ChannelCapacity:       1000,
}

// ErrMissingSigningKey is returned by New when no token signing key is
// configured. There is no built-in key.
var ErrMissingSigningKey = errors.New("AUTH_SIGNING_SECRET_KEY is not set")

type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
	signingKeyOptional  bool
}

func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// WithSigningKeyOptional lets processes that never verify tokens, such as
// the seeder, start without a signing key.
func WithSigningKeyOptional(signingKeyOptional bool) InitOption {
	return func(options *initOptions) {
		options.signingKeyOptional = signingKeyOptional
	}
}

// New builds the configuration from defaults, the JSON file named by -c or
// CONFIG, the environment (and .env) and finally the command line.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Unable to load .env file: %v", err)
	}

	var fromFlags Config
	var flagSet *flag.FlagSet
	if !options.disableFlagsParsing {
		var err error
		flagSet, err = parseFlags(&fromFlags)
		if err != nil {
			return nil, err
		}
	}

	var fromEnv Config
	if err := env.Parse(&fromEnv); err != nil {
		return nil, fmt.Errorf("in internal/config/config.go/New(): error while `env.Parse()` calling: %w", err)
	}

	values := &Config{}

	configFile := fromEnv.ConfigFile
	if fromFlags.ConfigFile != "" {
		configFile = fromFlags.ConfigFile
	}
	if configFile != "" {
		var fromJSON Config
		if err := readJSONFile(configFile, &fromJSON); err != nil {
			return nil, err
		}
		applyDefaults(values, fromJSON)
	}

	applyOverrides(values, fromEnv)
	if flagSet != nil {
		applyFlagOverrides(values, fromFlags, flagSet)
	}
	applyDefaults(values, defaultConfig)

	if err := values.validate(); err != nil {
		return nil, err
	}

	if values.AuthSigningSecretKey == "" && !options.signingKeyOptional {
		return nil, ErrMissingSigningKey
	}

	return values, nil
}

func parseFlags(values *Config) (*flag.FlagSet, error) {
	flagSet := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flagSet.StringVar(&values.ConfigFile, "c", "", "path to the JSON config file")
	flagSet.StringVar(&values.RunAddr, "a", "", "address and port to run the HTTP server")
	flagSet.StringVar(&values.GRPCAddr, "g", "", "address and port to run the gRPC server")
	flagSet.StringVar(&values.LogLevel, "l", "", "logger level")
	flagSet.StringVar(&values.MongoURI, "m", "", "MongoDB connection URI")
	flagSet.StringVar(&values.DatabaseDSN, "d", "", "PostgreSQL connection details")
	flagSet.StringVar(&values.DBFileName, "f", "", "JSON file name with database")
	flagSet.StringVar(&values.TrustedSubnet, "t", "", "trusted subnet in CIDR notation")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("in internal/config/config.go/parseFlags(): error while `flagSet.Parse()` calling: %w", err)
	}

	return flagSet, nil
}

func readJSONFile(fileName string, values *Config) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return fmt.Errorf("in internal/config/config.go/readJSONFile(): error while `os.ReadFile()` calling: %w", err)
	}

	if err := json.Unmarshal(data, values); err != nil {
		return fmt.Errorf("in internal/config/config.go/readJSONFile(): error while `json.Unmarshal()` calling: %w", err)
	}

	return nil
}

// applyDefaults fills every zero field of values from defaults.
func applyDefaults(values *Config, defaults Config) {
	if values.RunAddr == "" {
		values.RunAddr = defaults.RunAddr
	}
	if values.GRPCAddr == "" {
		values.GRPCAddr = defaults.GRPCAddr
	}
	if values.LogLevel == "" {
		values.LogLevel = defaults.LogLevel
	}
	if values.MongoURI == "" {
		values.MongoURI = defaults.MongoURI
	}
	if values.MongoDatabase == "" {
		values.MongoDatabase = defaults.MongoDatabase
	}
	if values.DatabaseDSN == "" {
		values.DatabaseDSN = defaults.DatabaseDSN
	}
	if values.DBFileName == "" {
		values.DBFileName = defaults.DBFileName
	}
	if values.DBConnectionTimeout == 0 {
		values.DBConnectionTimeout = defaults.DBConnectionTimeout
	}
	if values.AuthCookieName == "" {
		values.AuthCookieName = defaults.AuthCookieName
	}
	if values.AuthSigningSecretKey == "" {
		values.AuthSigningSecretKey = defaults.AuthSigningSecretKey
	}
	if values.TrustedSubnet == "" {
		values.TrustedSubnet = defaults.TrustedSubnet
	}
	if values.ActivityLogPath == "" {
		values.ActivityLogPath = defaults.ActivityLogPath
	}
	if values.ActivityFlushInterval == 0 {
		values.ActivityFlushInterval = defaults.ActivityFlushInterval
	}
	if values.ChannelCapacity == 0 {
		values.ChannelCapacity = defaults.ChannelCapacity
	}
}

// applyOverrides copies every non-zero field of overrides into values.
func applyOverrides(values *Config, overrides Config) {
	merged := overrides
	applyDefaults(&merged, *values)
	*values = merged
}

// applyFlagOverrides copies only the flags that were set on the command line.
func applyFlagOverrides(values *Config, fromFlags Config, flagSet *flag.FlagSet) {
	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			values.RunAddr = fromFlags.RunAddr
		case "g":
			values.GRPCAddr = fromFlags.GRPCAddr
		case "l":
			values.LogLevel = fromFlags.LogLevel
		case "m":
			values.MongoURI = fromFlags.MongoURI
		case "d":
			values.DatabaseDSN = fromFlags.DatabaseDSN
		case "f":
			values.DBFileName = fromFlags.DBFileName
		case "t":
			values.TrustedSubnet = fromFlags.TrustedSubnet
		}
	})
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	if path == "" {
		return true
	}
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[value]
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}
