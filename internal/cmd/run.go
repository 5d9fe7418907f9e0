package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/commercial-manager/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API which provides:
- GET /api/health for monitoring
- GET /metrics in Prometheus format
- CRUD on purchase orders under /api/orders`,
	Args: cobra.NoArgs,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
}

func runServer(cmd *cobra.Command, args []string) error {
	fmt.Println("🚀 Commercial Manager Starting...")

	fmt.Println("🔌 Connecting to database...")
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Println("✅ Database connected successfully")

	if a.cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	addr := a.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(a.db, a.orders, a.log)

	fmt.Printf("🌐 Starting server on %s...\n", addr)
	a.log.Info().Str("addr", addr).Bool("events", a.cfg.Events.Enabled).Msg("http server listening")
	if err := srv.Start(ctx, addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	fmt.Println("👋 Server stopped")
	return nil
}
