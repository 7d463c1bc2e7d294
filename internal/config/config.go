// Package config loads the server configuration.
//
// Values are resolved in order: built-in defaults, the optional YAML file,
// environment variables (a .env file in the working directory is loaded
// first when present), then command-line flags applied by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// ListenAddr is the line protocol address.
	ListenAddr string `yaml:"listen_addr"`

	// HTTPAddr and GRPCAddr serve health and read-only catalog endpoints.
	// Empty disables the listener.
	HTTPAddr string `yaml:"http_addr"`
	GRPCAddr string `yaml:"grpc_addr"`

	// IdleTimeout ends sessions that send nothing for this long. Zero
	// keeps sessions open indefinitely.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// MinimumPrice is the starting value of the product price floor.
	MinimumPrice string `yaml:"minimum_price"`

	Store       StoreConfig       `yaml:"store"`
	Cart        CartConfig        `yaml:"cart"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Log         LogConfig         `yaml:"log"`
}

type StoreConfig struct {
	// Driver is "file" or "mysql".
	Driver       string `yaml:"driver"`
	UsersFile    string `yaml:"users_file"`
	ProductsFile string `yaml:"products_file"`
	MySQLDSN     string `yaml:"mysql_dsn"`
}

type CartConfig struct {
	// Driver is "memory" or "redis".
	Driver    string `yaml:"driver"`
	RedisAddr string `yaml:"redis_addr"`
}

type CredentialsConfig struct {
	// Policy is "length" or "email".
	Policy      string `yaml:"policy"`
	EmailDomain string `yaml:"email_domain"`
	MinUsername int    `yaml:"min_username"`
	MinPassword int    `yaml:"min_password"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		ListenAddr:   ":8080",
		HTTPAddr:     ":8081",
		GRPCAddr:     ":50051",
		MinimumPrice: "0",
		Store: StoreConfig{
			Driver:       "file",
			UsersFile:    "users.dat",
			ProductsFile: "products.dat",
			MySQLDSN:     "root:root@tcp(localhost:3306)/storefront?parseTime=true",
		},
		Cart: CartConfig{
			Driver:    "memory",
			RedisAddr: "localhost:6379",
		},
		Credentials: CredentialsConfig{
			Policy:      "length",
			EmailDomain: "tu-sofia.bg",
			MinUsername: 3,
			MinPassword: 5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// non-empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.ListenAddr = getEnv("LISTEN_ADDR", c.ListenAddr)
	c.HTTPAddr = getEnv("HTTP_ADDR", c.HTTPAddr)
	c.GRPCAddr = getEnv("GRPC_ADDR", c.GRPCAddr)
	c.MinimumPrice = getEnv("MINIMUM_PRICE", c.MinimumPrice)
	c.Store.Driver = getEnv("STORE_DRIVER", c.Store.Driver)
	c.Store.UsersFile = getEnv("USERS_FILE", c.Store.UsersFile)
	c.Store.ProductsFile = getEnv("PRODUCTS_FILE", c.Store.ProductsFile)
	c.Store.MySQLDSN = getEnv("MYSQL_DSN", c.Store.MySQLDSN)
	c.Cart.Driver = getEnv("CART_DRIVER", c.Cart.Driver)
	c.Cart.RedisAddr = getEnv("REDIS_ADDR", c.Cart.RedisAddr)
	c.Credentials.Policy = getEnv("CREDENTIAL_POLICY", c.Credentials.Policy)
	c.Credentials.EmailDomain = getEnv("EMAIL_DOMAIN", c.Credentials.EmailDomain)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	if v := os.Getenv("IDLE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("IDLE_TIMEOUT: %w", err)
		}
		c.IdleTimeout = d
	}
	for key, target := range map[string]*int{
		"MIN_USERNAME": &c.Credentials.MinUsername,
		"MIN_PASSWORD": &c.Credentials.MinPassword,
	} {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*target = n
		}
	}
	return nil
}

// Validate checks the values that cannot be caught while parsing.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen_addr is required")
	}
	if c.IdleTimeout < 0 {
		return errors.New("idle_timeout must not be negative")
	}
	price, err := c.MinimumPriceValue()
	if err != nil {
		return err
	}
	if price.IsNegative() {
		return errors.New("minimum_price must not be negative")
	}
	switch c.Store.Driver {
	case "file":
		if c.Store.UsersFile == "" || c.Store.ProductsFile == "" {
			return errors.New("store.users_file and store.products_file are required for the file driver")
		}
	case "mysql":
		if c.Store.MySQLDSN == "" {
			return errors.New("store.mysql_dsn is required for the mysql driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch c.Cart.Driver {
	case "memory":
	case "redis":
		if c.Cart.RedisAddr == "" {
			return errors.New("cart.redis_addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown cart driver %q", c.Cart.Driver)
	}
	if c.Credentials.MinUsername < 0 || c.Credentials.MinPassword < 0 {
		return errors.New("credential minimum lengths must not be negative")
	}
	return nil
}

func (c *Config) MinimumPriceValue() (decimal.Decimal, error) {
	price, err := decimal.NewFromString(c.MinimumPrice)
	if err != nil {
		return decimal.Zero, fmt.Errorf("minimum_price: %w", err)
	}
	return price, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
