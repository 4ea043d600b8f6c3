package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations,
// prices and limits.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing
	BaseURL        string // public base URL used in SMS payment/feedback links
	PriceDKK       int    // current sharpening price in whole DKK (0 = free)
	MinSkateSize   int    // smallest accepted skate size
	MaxSkateSize   int    // largest accepted skate size
	PaymentKey     string // payment provider secret key (empty = simulation mode)
	WebhookSecret  string // shared secret for webhook signature verification
	SMSToken       string // SMS gateway API token (empty = simulation mode)
	SMSSender      string // SMS sender name shown to customers (optional)
	AMQPURL        string // AMQP broker URL for the notification queue
	CatalogDir     string // directory holding the YAML message catalogs
	InviteTTLDays  int    // sharpener invitation validity in days
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Provider and SMS
// credentials are deliberately optional: without them the service runs in
// simulation mode so development needs no external accounts.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),  // environment (dev/test/prod)
		Port:           must("APP_PORT"), // port to bind the HTTP server
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		BaseURL:        must("BASE_URL"),
		PriceDKK:       mustInt("PRICE_DKK"),
		MinSkateSize:   intOr("MIN_SKATE_SIZE", 19),
		MaxSkateSize:   intOr("MAX_SKATE_SIZE", 50),
		PaymentKey:     os.Getenv("PAYMENT_SECRET_KEY"), // empty = simulation
		WebhookSecret:  must("WEBHOOK_SECRET"),
		SMSToken:       os.Getenv("SMS_API_TOKEN"), // empty = simulation
		SMSSender:      os.Getenv("SMS_SENDER"),
		AMQPURL:        must("AMQP_URL"),
		CatalogDir:     envStr("TRANSLATIONS_DIR", "translations"),
		InviteTTLDays:  intOr("INVITE_TTL_DAYS", 7),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// intOr is like envStr for integer variables.  A malformed value is still
// fatal: silently falling back to a default would hide a typo.
func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
