package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hearthhq/hearth/internal/auth"
	"github.com/hearthhq/hearth/internal/server"
	"github.com/hearthhq/hearth/internal/session"
	"github.com/hearthhq/hearth/internal/upload"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		host string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Hearth API server",
		Long:  "Start the HTTP server that exposes the account, event, and upload APIs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(host, port, dev)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP listen port")
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "HTTP listen host")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (verbose logging)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe(host string, port int, dev bool) error {
	logLevel := slog.LevelInfo
	if dev || viper.GetString("logging.level") == "debug" {
		logLevel = slog.LevelDebug
	}
	var handler slog.Handler
	if viper.GetString("logging.format") == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	}
	logger := slog.New(handler)

	// 1. Durable record store
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("init record store: %w", err)
	}
	defer st.Close()
	logger.Info("record store initialized")

	// 2. Upload storage
	storage, err := upload.NewStorage(uploadDir())
	if err != nil {
		return fmt.Errorf("init upload storage: %w", err)
	}
	logger.Info("upload storage initialized", "dir", storage.Dir())

	// 3. Auth service and session manager
	authSvc := auth.NewService(st, logger)

	sessionTTL := 720 * time.Hour
	if ttlStr := viper.GetString("sessions.ttl"); ttlStr != "" {
		ttl, err := time.ParseDuration(ttlStr)
		if err != nil {
			return fmt.Errorf("parse sessions.ttl: %w", err)
		}
		sessionTTL = ttl
	}
	sessions := session.NewManager(session.NewMemoryStore(sessionTTL), authSvc.Lookup)

	// 4. First-run hint
	accts, err := st.ListAccounts(context.Background())
	if err != nil {
		logger.Warn("failed to list accounts", "error", err)
	} else if len(accts) == 0 {
		logger.Warn("no accounts yet - sign up via POST /auth/signup or run: hearth user create")
	}

	// 5. Build and start HTTP server
	srvCfg := server.DefaultConfig()
	srvCfg.Host = host
	srvCfg.Port = port
	if origins := viper.GetStringSlice("server.cors.origins"); len(origins) > 0 {
		srvCfg.CORSOrigins = origins
	}
	if name := viper.GetString("sessions.cookie_name"); name != "" {
		srvCfg.CookieName = name
	}
	srvCfg.SecureCookie = viper.GetBool("sessions.secure_cookie")
	if rate := viper.GetInt("server.auth_rate_per_min"); rate > 0 {
		srvCfg.AuthRatePerMin = rate
	}

	srv := server.New(srvCfg, st, authSvc, sessions, storage, logger)

	fmt.Printf("→ Hearth\n")
	fmt.Printf("→ Listening on http://%s:%d\n", host, port)
	fmt.Printf("→ OpenAPI: http://%s:%d/openapi.json\n", host, port)
	fmt.Printf("→ Health:  http://%s:%d/healthz\n", host, port)
	fmt.Println()

	return srv.ListenAndServe()
}
