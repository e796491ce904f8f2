package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultReceiverPath = "/__current_import_map"
	DefaultSenderPath   = "/__collagejs-import-map-sender.js"
	DefaultEventsPath   = "/__collage_events"
	DefaultWaitTimeout  = 5000 * time.Millisecond
)

type Config struct {
	Port string
	Env  string

	// Root marks this instance as the root/shell application, the one that
	// owns the document and sends the import map to dependent dev servers.
	Root bool

	// AppRoot is the directory the dev server serves the application from.
	AppRoot string

	// ClientRuntimePath is the served path of the dev client's bootstrap
	// script, the only file the sender injection applies to.
	ClientRuntimePath string

	ReceiverPath string
	SenderPath   string
	EventsPath   string

	// AllowedOrigins extends the loopback allowance for the receiver
	// endpoint; matching is by substring containment.
	AllowedOrigins []string

	// WaitTimeout bounds how long a blocked module request parks on the
	// readiness gate before failing open.
	WaitTimeout time.Duration

	LogLevel string
	Banner   bool

	// Externals are build-time external specifiers merged into the
	// resolve-hook predicate.
	Externals []string

	// BarePrefixes restricts which bare specifiers are externalized; empty
	// means all of them.
	BarePrefixes []string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":4101", "dev server port")
	root := flag.Bool("root", false, "run as the root/shell instance")
	appRoot := flag.String("app-root", ".", "application root directory")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	cfg := &Config{
		Port:              *port,
		Env:               env,
		Root:              *root || envBool("COLLAGE_ROOT", false),
		AppRoot:           firstNonEmpty(strings.TrimSpace(os.Getenv("COLLAGE_APP_ROOT")), *appRoot),
		ClientRuntimePath: firstNonEmpty(strings.TrimSpace(os.Getenv("COLLAGE_CLIENT_RUNTIME")), "/@collage/client.js"),
		ReceiverPath:      firstNonEmpty(strings.TrimSpace(os.Getenv("COLLAGE_RECEIVER_PATH")), DefaultReceiverPath),
		SenderPath:        firstNonEmpty(strings.TrimSpace(os.Getenv("COLLAGE_SENDER_PATH")), DefaultSenderPath),
		EventsPath:        firstNonEmpty(strings.TrimSpace(os.Getenv("COLLAGE_EVENTS_PATH")), DefaultEventsPath),
		AllowedOrigins:    splitList(os.Getenv("COLLAGE_ALLOWED_ORIGINS")),
		WaitTimeout:       envDuration("COLLAGE_WAIT_TIMEOUT_MS", DefaultWaitTimeout),
		LogLevel:          firstNonEmpty(strings.TrimSpace(os.Getenv("COLLAGE_LOG_LEVEL")), "info"),
		Banner:            envBool("COLLAGE_BANNER", true),
		Externals:         splitList(os.Getenv("COLLAGE_EXTERNALS")),
		BarePrefixes:      splitList(os.Getenv("COLLAGE_BARE_PREFIXES")),
	}
	return cfg, nil
}

// Dev reports whether the gateway runs in development mode; the admission
// filter is inert outside of it.
func (c *Config) Dev() bool {
	return !strings.EqualFold(strings.TrimSpace(c.Env), "production")
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms < 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
