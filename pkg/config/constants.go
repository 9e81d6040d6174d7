package config

// EnvPrefix is handed to envconfig; every field carries its full variable name in
// the tag so the alternate lookup resolves them.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "TRIPDESK_APP_ENV"
	EnvPort     = "TRIPDESK_APP_PORT"
	EnvLogLevel = "TRIPDESK_LOG_LEVEL"

	EnvDBDSN  = "TRIPDESK_DB_DSN"
	EnvDBHost = "TRIPDESK_DB_HOST"
	EnvDBUser = "TRIPDESK_DB_USER"
	EnvDBName = "TRIPDESK_DB_NAME"

	EnvRedisURL  = "TRIPDESK_REDIS_URL"
	EnvRedisAddr = "TRIPDESK_REDIS_ADDR"

	EnvUseSQLite   = "TRIPDESK_USE_SQLITE"
	EnvAutoMigrate = "TRIPDESK_AUTO_MIGRATE"

	EnvHotelDiscountRate   = "TRIPDESK_PRICING_HOTEL_DISCOUNT_RATE"
	EnvTicketDiscountRate  = "TRIPDESK_PRICING_TICKET_DISCOUNT_RATE"
	EnvVanTourDiscountRate = "TRIPDESK_PRICING_VAN_TOUR_DISCOUNT_RATE"

	EnvAllotmentPolicy   = "TRIPDESK_ALLOTMENT_POLICY"
	EnvAllotmentGuard    = "TRIPDESK_ALLOTMENT_GUARD"
	EnvAllotmentLockTTL  = "TRIPDESK_ALLOTMENT_LOCK_TTL"
	EnvAllotmentLockWait = "TRIPDESK_ALLOTMENT_LOCK_WAIT"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
