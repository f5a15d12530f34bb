package scrape

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/marklens/marklens/pkg/fn"
)

// Settings configures fetch behavior across all sites. Defaults are
// overridable via MARKLENS_* environment variables; unparsable overrides
// are silently ignored so a bad env var can never break a run.
type Settings struct {
	UserAgent                string
	MaxConcurrent            int
	DownloadDelay            float64 // seconds, backoff base
	RetryTimes               int
	Timeout                  int // seconds, per HTTP request
	FallbackEnabled          bool
	FallbackDelay            float64
	RetryDelayMultiplier     float64
	MaxRetryDelay            float64
	BackoffStrategy          fn.Backoff
	EnableFallbackUserAgents bool
	FallbackUserAgents       []string
}

// DefaultSettings returns the stock configuration.
func DefaultSettings() Settings {
	return Settings{
		UserAgent:                "Mozilla/5.0 (compatible; marklens/1.0)",
		MaxConcurrent:            2,
		DownloadDelay:            1.0,
		RetryTimes:               3,
		Timeout:                  20,
		FallbackEnabled:          true,
		FallbackDelay:            2.0,
		RetryDelayMultiplier:     2.0,
		MaxRetryDelay:            10.0,
		BackoffStrategy:          fn.BackoffExponential,
		EnableFallbackUserAgents: true,
		FallbackUserAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		},
	}
}

// SettingsFromEnv starts from DefaultSettings and applies MARKLENS_*
// overrides.
func SettingsFromEnv() Settings {
	return DefaultSettings().withEnv(os.Getenv)
}

// withEnv applies overrides through a lookup function. Split out so tests
// can feed a map instead of the process environment.
func (s Settings) withEnv(get func(string) string) Settings {
	if v := get("MARKLENS_USER_AGENT"); v != "" {
		s.UserAgent = v
	}
	if v := get("MARKLENS_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.MaxConcurrent = n
		}
	}
	if v := get("MARKLENS_DOWNLOAD_DELAY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			s.DownloadDelay = f
		}
	}
	if v := get("MARKLENS_RETRY_TIMES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			s.RetryTimes = n
		}
	}
	if v := get("MARKLENS_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.Timeout = n
		}
	}
	if v := get("MARKLENS_FALLBACK_ENABLED"); v != "" {
		s.FallbackEnabled = strings.EqualFold(v, "true")
	}
	if v := get("MARKLENS_FALLBACK_DELAY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			s.FallbackDelay = f
		}
	}
	if v := get("MARKLENS_RETRY_DELAY_MULTIPLIER"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			s.RetryDelayMultiplier = f
		}
	}
	if v := get("MARKLENS_MAX_RETRY_DELAY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			s.MaxRetryDelay = f
		}
	}
	if v := strings.ToLower(get("MARKLENS_BACKOFF_STRATEGY")); v != "" {
		if b := fn.Backoff(v); b == fn.BackoffExponential || b == fn.BackoffLinear {
			s.BackoffStrategy = b
		}
	}
	if v := get("MARKLENS_ENABLE_FALLBACK_USER_AGENTS"); v != "" {
		s.EnableFallbackUserAgents = strings.EqualFold(v, "true")
	}
	if v := get("MARKLENS_FALLBACK_USER_AGENTS"); v != "" {
		var agents []string
		for _, a := range strings.Split(v, ",") {
			if a = strings.TrimSpace(a); a != "" {
				agents = append(agents, a)
			}
		}
		if len(agents) > 0 {
			s.FallbackUserAgents = agents
		}
	}
	return s
}

// retryOpts translates the settings into backoff configuration for fn.Retry.
func (s Settings) retryOpts() fn.RetryOpts {
	return fn.RetryOpts{
		MaxAttempts: s.RetryTimes,
		BaseDelay:   time.Duration(s.DownloadDelay * float64(time.Second)),
		Multiplier:  s.RetryDelayMultiplier,
		MaxDelay:    time.Duration(s.MaxRetryDelay * float64(time.Second)),
		Strategy:    s.BackoffStrategy,
	}
}
