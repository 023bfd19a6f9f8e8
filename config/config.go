// Package config loads the settings of a basket portfolio from a YAML file,
// an optional .env file and BASKET_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/etnz/basket"
	"github.com/etnz/basket/date"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding the configuration file.
const (
	EnvCurrency      = "BASKET_CURRENCY"
	EnvCashTicker    = "BASKET_CASH_TICKER"
	EnvDateBasis     = "BASKET_DATE_BASIS"
	EnvSettlementLag = "BASKET_SETTLEMENT_LAG"
	EnvMarginLimit   = "BASKET_MARGIN_LIMIT"
	EnvIDs           = "BASKET_IDS"
	EnvLogLevel      = "BASKET_LOG_LEVEL"
)

// Config is the complete configuration of a portfolio.
type Config struct {
	Currency       string          `json:"currency" yaml:"currency"`
	CashTicker     string          `json:"cash_ticker" yaml:"cash_ticker"`
	OpeningDeposit *OpeningDeposit `json:"opening_deposit,omitempty" yaml:"opening_deposit,omitempty"`
	Margin         Margin          `json:"margin" yaml:"margin"`
	DateBasis      string          `json:"date_basis" yaml:"date_basis"`         // "execution" or "settlement"
	SettlementLag  int             `json:"settlement_lag" yaml:"settlement_lag"` // in days
	IDs            string          `json:"ids" yaml:"ids"`                       // "uuid" or "ulid"
	LogLevel       string          `json:"log_level" yaml:"log_level"`
}

// OpeningDeposit is a deposit synthesized before the ledger.
type OpeningDeposit struct {
	Date   string `json:"date" yaml:"date"`
	Amount string `json:"amount" yaml:"amount"`
}

// Margin configures negative cash balances.
type Margin struct {
	Allowed bool   `json:"allowed" yaml:"allowed"`
	Limit   string `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// Default returns the configuration used when there is no file.
func Default() *Config {
	return &Config{
		Currency:  "USD",
		DateBasis: basket.ExecutionBasis.String(),
		IDs:       "uuid",
		LogLevel:  "warn",
	}
}

// Load reads the configuration file at path, if not empty, on top of the
// defaults, then applies the environment overrides.
//
// Environment variables win over envFiles (".env" if none is given), missing
// env files are ignored.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// Try YAML first, fall back to JSON
		if err := yaml.Unmarshal(data, cfg); err != nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
			}
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	dotenv := make(map[string]string)
	for _, file := range envFiles {
		values, err := godotenv.Read(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read env file %q: %w", file, err)
		}
		for k, v := range values {
			dotenv[k] = v
		}
	}
	if err := cfg.override(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// override applies the BASKET_* variables found by lookup.
func (c *Config) override(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvCurrency); ok {
		c.Currency = v
	}
	if v, ok := lookup(EnvCashTicker); ok {
		c.CashTicker = v
	}
	if v, ok := lookup(EnvDateBasis); ok {
		c.DateBasis = v
	}
	if v, ok := lookup(EnvIDs); ok {
		c.IDs = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvMarginLimit); ok {
		c.Margin = Margin{Allowed: v != "", Limit: v}
	}
	if v, ok := lookup(EnvSettlementLag); ok {
		lag, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSettlementLag, err)
		}
		c.SettlementLag = lag
	}
	return nil
}

// Validate checks the configuration is consistent.
func (c *Config) Validate() error {
	if money.GetCurrency(c.Currency) == nil {
		return fmt.Errorf("unknown currency %q", c.Currency)
	}
	if _, err := basket.ParseDateBasis(c.DateBasis); err != nil {
		return err
	}
	if c.SettlementLag < 0 {
		return fmt.Errorf("settlement_lag must not be negative, got %d", c.SettlementLag)
	}
	if c.IDs != "uuid" && c.IDs != "ulid" {
		return fmt.Errorf("ids must be uuid or ulid, got %q", c.IDs)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if _, err := c.margin(); err != nil {
		return err
	}
	if _, _, _, err := c.Opening(); err != nil {
		return err
	}
	return nil
}

func (c *Config) margin() (basket.MarginPolicy, error) {
	if !c.Margin.Allowed {
		return basket.MarginNotAllowed, nil
	}
	limit, err := basket.ParseMoney(c.Margin.Limit, c.Currency)
	if err != nil {
		return nil, fmt.Errorf("margin.limit: %w", err)
	}
	if limit.IsNegative() {
		return nil, fmt.Errorf("margin.limit must not be negative, got %s", c.Margin.Limit)
	}
	return basket.MarginLimit(limit), nil
}

// Opening returns the opening deposit, ok is false if there is none.
func (c *Config) Opening() (on date.Date, amount basket.Money, ok bool, err error) {
	if c.OpeningDeposit == nil {
		return on, amount, false, nil
	}
	if on, err = date.Parse(c.OpeningDeposit.Date); err != nil {
		return on, amount, false, fmt.Errorf("opening_deposit.date: %w", err)
	}
	if amount, err = basket.ParseMoney(c.OpeningDeposit.Amount, c.Currency); err != nil {
		return on, amount, false, fmt.Errorf("opening_deposit.amount: %w", err)
	}
	if !amount.IsPositive() {
		return on, amount, false, fmt.Errorf("opening_deposit.amount must be positive, got %s", c.OpeningDeposit.Amount)
	}
	return on, amount, true, nil
}

// Options converts the configuration into portfolio options using logger.
func (c *Config) Options(logger *zerolog.Logger) (basket.Options, error) {
	basis, err := basket.ParseDateBasis(c.DateBasis)
	if err != nil {
		return basket.Options{}, err
	}
	margin, err := c.margin()
	if err != nil {
		return basket.Options{}, err
	}
	return basket.Options{Currency: c.Currency, Margin: margin, Basis: basis, Logger: logger}, nil
}

// TransactionFactory returns a transaction factory generating the configured ids.
func (c *Config) TransactionFactory() *basket.TransactionFactory {
	ids := basket.UUIDs()
	if c.IDs == "ulid" {
		ids = basket.ULIDs(time.Now)
	}
	f := basket.NewTransactionFactory(ids, c.Currency)
	f.SettlementLag = c.SettlementLag
	return f
}

// PortfolioFactory returns a portfolio factory for the configuration.
func (c *Config) PortfolioFactory(logger *zerolog.Logger) (*basket.PortfolioFactory, error) {
	opts, err := c.Options(logger)
	if err != nil {
		return nil, err
	}
	return basket.NewPortfolioFactory(c.TransactionFactory(), opts), nil
}

// NewLogger creates a human readable logger writing to w.
func NewLogger(level string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: true}).
		Level(lvl).
		With().
		Timestamp().
		Logger(), nil
}
