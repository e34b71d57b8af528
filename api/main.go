package main

import (
	"crypto/rand"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

type application struct {
	config  config
	storage *storage
}

var (
	flagConfigPath  string
	flagPort        int
	flagEnv         string
	flagDSN         string
	flagMaxOpen     int
	flagMaxIdle     int
	flagMaxIdleTime string
	flagJWTSecret   string
	flagJWTTTL      string
	flagCORSOrigins []string
)

var rootCmd = &cobra.Command{
	Use:          "tasknest",
	Short:        "Personal task-management API server",
	RunE:         runServer,
	SilenceUsage: true,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&flagConfigPath, "config", "", "Path to tasknest.yaml")
	f.IntVar(&flagPort, "port", 8000, "Server port")
	f.StringVar(&flagEnv, "env", "development", "Environment [development|production]")
	f.StringVar(&flagDSN, "db-dsn", os.Getenv("DB_DSN"), "PostgreSQL DSN")
	f.IntVar(&flagMaxOpen, "db-max-open-conns", 25, "PostgreSQL max open connections")
	f.IntVar(&flagMaxIdle, "db-max-idle-conns", 25, "PostgreSQL max idle connections")
	f.StringVar(&flagMaxIdleTime, "db-max-idle-time", "15m", "PostgreSQL max connection idle time")
	f.StringVar(&flagJWTSecret, "jwt-secret", os.Getenv("JWT_SECRET"), "JWT signing secret")
	f.StringVar(&flagJWTTTL, "jwt-ttl", "72h", "Session token lifetime")
	f.StringSliceVar(&flagCORSOrigins, "cors-trusted-origins", nil, "Trusted CORS origins")
}

func resolveConfig(cmd *cobra.Command) (config, error) {
	var cfg config
	cfg.port = flagPort
	cfg.env = flagEnv
	cfg.db.dsn = flagDSN
	cfg.db.maxOpenConnections = flagMaxOpen
	cfg.db.maxIdleConnections = flagMaxIdle
	cfg.db.maxIdleTime = parseDurationOrDefault("db-max-idle-time", flagMaxIdleTime, 15*time.Minute)
	cfg.jwt.secret = flagJWTSecret
	cfg.jwt.ttl = parseDurationOrDefault("jwt-ttl", flagJWTTTL, 72*time.Hour)
	cfg.cors.trustedOrigins = flagCORSOrigins

	fc, err := loadFileConfig(flagConfigPath)
	if err != nil {
		return cfg, err
	}
	if fc == nil {
		return cfg, nil
	}

	changed := cmd.Flags().Changed
	if fc.Port != 0 && !changed("port") {
		cfg.port = fc.Port
	}
	if fc.Env != "" && !changed("env") {
		cfg.env = fc.Env
	}
	if fc.Database.DSN != "" && !changed("db-dsn") && os.Getenv("DB_DSN") == "" {
		cfg.db.dsn = fc.Database.DSN
	}
	if fc.Database.MaxOpenConnections != 0 && !changed("db-max-open-conns") {
		cfg.db.maxOpenConnections = fc.Database.MaxOpenConnections
	}
	if fc.Database.MaxIdleConnections != 0 && !changed("db-max-idle-conns") {
		cfg.db.maxIdleConnections = fc.Database.MaxIdleConnections
	}
	if fc.Database.MaxIdleTime != "" && !changed("db-max-idle-time") {
		cfg.db.maxIdleTime = parseDurationOrDefault("database.max_idle_time", fc.Database.MaxIdleTime, 15*time.Minute)
	}
	if fc.JWT.Secret != "" && !changed("jwt-secret") && os.Getenv("JWT_SECRET") == "" {
		cfg.jwt.secret = fc.JWT.Secret
	}
	if fc.JWT.TTL != "" && !changed("jwt-ttl") {
		cfg.jwt.ttl = parseDurationOrDefault("jwt.ttl", fc.JWT.TTL, 72*time.Hour)
	}
	if len(fc.CORS.TrustedOrigins) != 0 && !changed("cors-trusted-origins") {
		cfg.cors.trustedOrigins = fc.CORS.TrustedOrigins
	}
	return cfg, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	log.Println("established a connection with database")

	if err := ensureSchema(db); err != nil {
		return err
	}

	if cfg.jwt.secret == "" {
		secret := make([]byte, 32)
		_, err = rand.Read(secret)
		if err != nil {
			return err
		}
		cfg.jwt.secret = string(secret)
		log.Println("no JWT secret configured, generated a random one; sessions will not survive a restart")
	}

	app := &application{
		config:  cfg,
		storage: newStorage(db),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.port),
		Handler:      composeRoutes(app),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	log.Printf("Starting %s server on port %d\n", cfg.env, cfg.port)
	return srv.ListenAndServe()
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
