package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(Load),
)

type AppConfig struct {
	Name string
	Env  string
	Port int
}

type DBConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver string
	DSN    string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type GatewayConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type WebhookConfig struct {
	// SigningSecret enables signature verification when non-empty.
	SigningSecret string
	DedupTTL      time.Duration
}

type SchedulerConfig struct {
	SettlementInterval time.Duration
	RentalInterval     time.Duration
}

type BillingConfig struct {
	// PlatformFeePercent is the default platform fee applied at checkout
	// when the clinic carries no override.
	PlatformFeePercent float64
	// CashbackRedeemCapPercent caps a single redemption at this share of the
	// checkout's service subtotal, regardless of wallet balance.
	CashbackRedeemCapPercent int
}

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Gateway   GatewayConfig
	Webhook   WebhookConfig
	Scheduler SchedulerConfig
	Billing   BillingConfig
}

func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.name", "vitalis")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:vitalis.db?cache=shared")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("gateway.base_url", "")
	v.SetDefault("gateway.api_key", "")
	v.SetDefault("gateway.timeout", "10s")

	v.SetDefault("webhook.signing_secret", "")
	v.SetDefault("webhook.dedup_ttl", "72h")

	v.SetDefault("scheduler.settlement_interval", "1h")
	v.SetDefault("scheduler.rental_interval", "24h")

	v.SetDefault("billing.platform_fee_percent", 6.0)
	v.SetDefault("billing.cashback_redeem_cap_percent", 33)

	cfg := Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetInt("app.port"),
		},
		DB: DBConfig{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("db.driver"))),
			DSN:    v.GetString("db.dsn"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Gateway: GatewayConfig{
			BaseURL: strings.TrimRight(v.GetString("gateway.base_url"), "/"),
			APIKey:  v.GetString("gateway.api_key"),
			Timeout: v.GetDuration("gateway.timeout"),
		},
		Webhook: WebhookConfig{
			SigningSecret: v.GetString("webhook.signing_secret"),
			DedupTTL:      v.GetDuration("webhook.dedup_ttl"),
		},
		Scheduler: SchedulerConfig{
			SettlementInterval: v.GetDuration("scheduler.settlement_interval"),
			RentalInterval:     v.GetDuration("scheduler.rental_interval"),
		},
		Billing: BillingConfig{
			PlatformFeePercent:       v.GetFloat64("billing.platform_fee_percent"),
			CashbackRedeemCapPercent: v.GetInt("billing.cashback_redeem_cap_percent"),
		},
	}

	return cfg, nil
}
