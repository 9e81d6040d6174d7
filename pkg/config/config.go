package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/tripdesk/backoffice/pkg/enums"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Pricing      PricingConfig
	Allotment    AllotmentConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	for name, rate := range map[string]decimal.Decimal{
		EnvHotelDiscountRate:   c.Pricing.HotelDiscountRate,
		EnvTicketDiscountRate:  c.Pricing.TicketDiscountRate,
		EnvVanTourDiscountRate: c.Pricing.VanTourDiscountRate,
	} {
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			err = multierr.Append(err, fmt.Errorf("%s must be within [0, 1], got %s", name, rate))
		}
	}
	if !c.Allotment.Policy.IsValid() {
		err = multierr.Append(err, fmt.Errorf("%s: unknown policy %q", EnvAllotmentPolicy, c.Allotment.Policy))
	}
	if !c.Allotment.Guard.IsValid() {
		err = multierr.Append(err, fmt.Errorf("%s: unknown guard %q", EnvAllotmentGuard, c.Allotment.Guard))
	}
	if c.Allotment.Guard == enums.AllotmentGuardLock {
		if !c.Redis.Configured() {
			err = multierr.Append(err, fmt.Errorf("%s=lock requires %s or %s", EnvAllotmentGuard, EnvRedisURL, EnvRedisAddr))
		}
		if c.Allotment.LockTTL <= 0 {
			err = multierr.Append(err, fmt.Errorf("%s must be positive", EnvAllotmentLockTTL))
		}
	}
	return err
}

type AppConfig struct {
	Env          string `envconfig:"TRIPDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"TRIPDESK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"TRIPDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TRIPDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN    string `envconfig:"TRIPDESK_DB_DSN"`
	Driver string `envconfig:"TRIPDESK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TRIPDESK_DB_HOST"`
	LegacyPort     int    `envconfig:"TRIPDESK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TRIPDESK_DB_USER"`
	LegacyPassword string `envconfig:"TRIPDESK_DB_PASSWORD"`
	LegacyName     string `envconfig:"TRIPDESK_DB_NAME"`
	LegacySSLMode  string `envconfig:"TRIPDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TRIPDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TRIPDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TRIPDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TRIPDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TRIPDESK_REDIS_URL"`
	Address      string        `envconfig:"TRIPDESK_REDIS_ADDR"`
	Password     string        `envconfig:"TRIPDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"TRIPDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TRIPDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TRIPDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TRIPDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TRIPDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TRIPDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Configured reports whether a redis endpoint was supplied.
func (r RedisConfig) Configured() bool {
	return r.URL != "" || r.Address != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TRIPDESK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TRIPDESK_AUTO_MIGRATE" default:"false"`
}

// PricingConfig holds the per-category share of the sale-minus-cost margin
// returned to the customer.
type PricingConfig struct {
	HotelDiscountRate   decimal.Decimal `envconfig:"TRIPDESK_PRICING_HOTEL_DISCOUNT_RATE" default:"0"`
	TicketDiscountRate  decimal.Decimal `envconfig:"TRIPDESK_PRICING_TICKET_DISCOUNT_RATE" default:"0"`
	VanTourDiscountRate decimal.Decimal `envconfig:"TRIPDESK_PRICING_VAN_TOUR_DISCOUNT_RATE" default:"0"`
}

// RateFor returns the configured rate for the category, zero when unknown.
func (p PricingConfig) RateFor(category enums.ProductCategory) decimal.Decimal {
	switch category {
	case enums.ProductCategoryHotel:
		return p.HotelDiscountRate
	case enums.ProductCategoryTicket:
		return p.TicketDiscountRate
	case enums.ProductCategoryVanTour:
		return p.VanTourDiscountRate
	}
	return decimal.Zero
}

type AllotmentConfig struct {
	Policy   enums.AllotmentPolicy `envconfig:"TRIPDESK_ALLOTMENT_POLICY" default:"advisory"`
	Guard    enums.AllotmentGuard  `envconfig:"TRIPDESK_ALLOTMENT_GUARD" default:"none"`
	LockTTL  time.Duration         `envconfig:"TRIPDESK_ALLOTMENT_LOCK_TTL" default:"30s"`
	LockWait time.Duration         `envconfig:"TRIPDESK_ALLOTMENT_LOCK_WAIT" default:"2s"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.DSN = "file:tripdesk.db?cache=shared"
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
