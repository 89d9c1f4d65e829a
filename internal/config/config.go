package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"mountainshares.backend/internal/domain/entities"
	domainerrors "mountainshares.backend/internal/domain/errors"
)

// Config holds all configuration values
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Stripe     StripeConfig
	Blockchain BlockchainConfig
	Settlement SettlementConfig
	Alerting   AlertingConfig
	Ops        OpsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode + "&prepare_threshold=0"
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// StripeConfig holds payment provider webhook configuration
type StripeConfig struct {
	WebhookSecret string
	// Tolerance bounds the age of a signed webhook timestamp.
	Tolerance time.Duration
}

// BlockchainConfig holds chain connectivity and contract addresses
type BlockchainConfig struct {
	RPCURL                   string
	SignerPrivateKey         string
	TokenAddress             string
	StablecoinAddress        string
	SettlementReserveAddress string
	CallTimeout              time.Duration
}

// SettlementConfig holds fee schedule and resilience tuning
type SettlementConfig struct {
	// FeeProfile selects a named fee schedule; the source history carried
	// several divergent rates, so the active one is explicit configuration.
	FeeProfile string
	FeeRate    decimal.Decimal
	Recipients []entities.FeeRecipient

	FailureThreshold uint32
	OpenDuration     time.Duration
	MinimumBuffer    decimal.Decimal
	SettleTimeout    time.Duration
}

// AlertingConfig holds the outbound ops notification channel
type AlertingConfig struct {
	SlackWebhookURL string
	SweepInterval   time.Duration
}

// OpsConfig protects the operator-facing endpoints
type OpsConfig struct {
	Token string
}

// Named fee profiles observed in the source history. "standard" is the
// dual-stream schedule (2% governance overage + 0.5% treasury reinforcement);
// "legacy" is the older flat 2%.
var feeProfiles = map[string]string{
	"standard": "0.025",
	"legacy":   "0.02",
}

// Load loads configuration from environment variables
func Load() *Config {
	profile := getEnv("FEE_PROFILE", "standard")
	rate, ok := feeProfiles[profile]
	if !ok {
		rate = feeProfiles["standard"]
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "mountainshares"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		Stripe: StripeConfig{
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			Tolerance:     getEnvAsDuration("STRIPE_WEBHOOK_TOLERANCE", 5*time.Minute),
		},
		Blockchain: BlockchainConfig{
			RPCURL:                   getEnv("ARBITRUM_RPC_URL", "https://arb1.arbitrum.io/rpc"),
			SignerPrivateKey:         getEnv("SIGNER_PRIVATE_KEY", ""),
			TokenAddress:             getEnv("MOUNTAINSHARES_TOKEN_ADDRESS", ""),
			StablecoinAddress:        getEnv("USDC_ADDRESS", "0xaf88d065e77c8cC2239327C5EDb3A432268e5831"),
			SettlementReserveAddress: getEnv("SETTLEMENT_RESERVE_ADDRESS", ""),
			CallTimeout:              getEnvAsDuration("CHAIN_CALL_TIMEOUT", 45*time.Second),
		},
		Settlement: SettlementConfig{
			FeeProfile:       profile,
			FeeRate:          mustDecimal(getEnv("FEE_RATE", rate)),
			Recipients:       loadRecipients(),
			FailureThreshold: uint32(getEnvAsInt("BREAKER_FAILURE_THRESHOLD", 3)),
			OpenDuration:     getEnvAsDuration("BREAKER_OPEN_DURATION", time.Minute),
			MinimumBuffer:    mustDecimal(getEnv("SAFETY_MINIMUM_BUFFER", "10")),
			SettleTimeout:    getEnvAsDuration("SETTLE_TIMEOUT", 2*time.Minute),
		},
		Alerting: AlertingConfig{
			SlackWebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),
			SweepInterval:   getEnvAsDuration("ALERT_SWEEP_INTERVAL", 30*time.Second),
		},
		Ops: OpsConfig{
			Token: getEnv("OPS_API_TOKEN", ""),
		},
	}
}

// loadRecipients reads the treasury recipient table. The weights are the
// governance distribution the platform has always used: nonprofit 30,
// community programs 15, treasury 30, governance 10, development 15.
func loadRecipients() []entities.FeeRecipient {
	defaults := []struct {
		id     string
		envKey string
		weight string
	}{
		{"nonprofit", "H4H_NONPROFIT_ADDRESS", "30"},
		{"community_programs", "H4H_COMMUNITY_PROGRAMS_ADDRESS", "15"},
		{"treasury", "H4H_TREASURY_MOUNTAINSHARES_ADDRESS", "30"},
		{"governance", "H4H_GOVERNANCE_ADDRESS", "10"},
		{"development", "DEVELOPMENT_ADDRESS", "15"},
	}

	recipients := make([]entities.FeeRecipient, 0, len(defaults))
	for _, d := range defaults {
		recipients = append(recipients, entities.FeeRecipient{
			RecipientID:   d.id,
			Address:       getEnv(d.envKey, ""),
			WeightPercent: mustDecimal(getEnv(d.envKey+"_WEIGHT", d.weight)),
		})
	}
	return recipients
}

// Validate rejects configurations that cannot settle safely. Placeholder and
// zero addresses have shipped before; they fail here instead of on-chain.
func (c *Config) Validate() error {
	if c.Stripe.WebhookSecret == "" {
		return domainerrors.ErrWebhookSecretMissing
	}

	addrs := map[string]string{
		"MOUNTAINSHARES_TOKEN_ADDRESS": c.Blockchain.TokenAddress,
		"USDC_ADDRESS":                 c.Blockchain.StablecoinAddress,
		"SETTLEMENT_RESERVE_ADDRESS":   c.Blockchain.SettlementReserveAddress,
	}
	for _, r := range c.Settlement.Recipients {
		addrs["recipient "+r.RecipientID] = r.Address
	}
	for name, addr := range addrs {
		if !isValidAddress(addr) {
			return fmt.Errorf("%s: %q: %w", name, addr, domainerrors.ErrPlaceholderAddress)
		}
	}

	total := decimal.Zero
	for _, r := range c.Settlement.Recipients {
		total = total.Add(r.WeightPercent)
	}
	if !total.Equal(decimal.NewFromInt(100)) {
		return fmt.Errorf("fee recipient weights sum to %s, want 100", total)
	}

	if c.Settlement.FeeRate.IsNegative() || c.Settlement.FeeRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("fee rate %s out of range [0,1]", c.Settlement.FeeRate)
	}
	return nil
}

// isValidAddress checks for a well-formed, non-zero, non-placeholder EVM
// address.
func isValidAddress(addr string) bool {
	if len(addr) != 42 || !strings.HasPrefix(addr, "0x") {
		return false
	}
	allZero := true
	for _, ch := range addr[2:] {
		switch {
		case ch >= '0' && ch <= '9':
		case ch >= 'a' && ch <= 'f':
		case ch >= 'A' && ch <= 'F':
		default:
			return false
		}
		if ch != '0' {
			allZero = false
		}
	}
	return !allZero
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
