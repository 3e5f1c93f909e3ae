package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	hmsauth "github.com/Vrushank2808/hmsauth"
	"github.com/Vrushank2808/hmsauth/backend"
	"github.com/Vrushank2808/hmsauth/metrics/export/prometheus"
	"github.com/Vrushank2808/hmsauth/portal"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	addr := getEnv("PORTAL_ADDR", ":8080")
	apiBase := getEnv("HMS_API_BASE_URL", "http://localhost:5000/api")
	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	redisPassword := getEnv("REDIS_PASSWORD", "")
	secureCookies := getEnvBool("PORTAL_SECURE_COOKIES", false)
	sessionTTL := getEnvDuration("SESSION_TTL", 24*time.Hour)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
	})
	defer redisClient.Close()

	api, err := backend.NewClient(backend.Config{BaseURL: apiBase})
	if err != nil {
		log.Error("backend client", "error", err)
		os.Exit(1)
	}

	engine, err := hmsauth.New().
		WithConfig(engineConfig(sessionTTL)).
		WithRedis(redisClient).
		WithAPIClient(api).
		WithAuditSink(hmsauth.NewJSONWriterSink(os.Stdout)).
		Build()
	if err != nil {
		log.Error("build engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	p := portal.New(engine, portal.Config{
		SecureCookies: secureCookies,
		Logger:        log,
	})

	root := chi.NewRouter()
	root.Mount("/", p.Router())
	root.Method(http.MethodGet, "/metrics", prometheus.NewPrometheusExporter(engine).Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("portal listening", "addr", addr, "api", apiBase)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("serve", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("shutdown", "error", err)
	}
}

func engineConfig(sessionTTL time.Duration) hmsauth.Config {
	return hmsauth.Config{
		Login: hmsauth.LoginConfig{
			AttemptTTL:        getEnvDuration("LOGIN_ATTEMPT_TTL", 10*time.Minute),
			MaxVerifyAttempts: getEnvInt("LOGIN_MAX_VERIFY_ATTEMPTS", 5),
			RedisPrefix:       "hla",
		},
		PasswordReset: hmsauth.PasswordResetConfig{
			AttemptTTL:        getEnvDuration("RESET_ATTEMPT_TTL", 10*time.Minute),
			MaxVerifyAttempts: getEnvInt("RESET_MAX_VERIFY_ATTEMPTS", 5),
			MinPasswordLength: getEnvInt("RESET_MIN_PASSWORD_LENGTH", 6),
			RedisPrefix:       "hra",
		},
		Session: hmsauth.SessionConfig{
			RedisPrefix: "hs",
			TTL:         sessionTTL,
		},
		Audit: hmsauth.AuditConfig{
			Enabled:    true,
			BufferSize: getEnvInt("AUDIT_BUFFER_SIZE", 256),
			DropIfFull: true,
		},
		Metrics: hmsauth.MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: getEnvBool("METRICS_LATENCY_HISTOGRAMS", false),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
