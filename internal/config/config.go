package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port           string
	DBDSN          string
	LogFile        string
	ScanDelay      time.Duration // simulated camera latency
	CookieSecure   bool
	TemplateReload bool
	RateLimit      int // requests per minute per IP
	RequestTimeout time.Duration
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = ":memory:"
	} // state is gone on restart unless a file DSN is given
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./plastscan.log"
	}

	cfg := Config{
		Port:           port,
		DBDSN:          dsn,
		LogFile:        logFile,
		ScanDelay:      durationEnv("SCAN_DELAY", 2*time.Second),
		CookieSecure:   boolEnv("COOKIE_SECURE", false),
		TemplateReload: boolEnv("TEMPLATE_RELOAD", false),
		RateLimit:      intEnv("RATE_LIMIT", 60),
		RequestTimeout: durationEnv("REQUEST_TIMEOUT", 10*time.Second),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s SCAN_DELAY=%s REQUEST_TIMEOUT=%s COOKIE_SECURE=%t",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.ScanDelay, cfg.RequestTimeout, cfg.CookieSecure)
	return cfg
}

func durationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		log.Printf("[warn] %s=%q is not a valid duration, using %s", key, v, def)
		return def
	}
	return d
}

func boolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[warn] %s=%q is not a valid bool, using %t", key, v, def)
		return def
	}
	return b
}

func intEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[warn] %s=%q is not a positive integer, using %d", key, v, def)
		return def
	}
	return n
}
