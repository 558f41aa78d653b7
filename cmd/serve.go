package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docchat/docchat/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the document chat server",
	Long:  `Starts the docchat HTTP server with the upload, document management and streaming chat APIs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort != 0 {
			cfg.Port = servePort
		}

		app, err := openComponents(cfg)
		if err != nil {
			return err
		}
		defer app.database.Close()

		engine, err := newEngine(cfg, app)
		if err != nil {
			return err
		}

		srv := server.New(server.Config{
			Port:        cfg.Port,
			DataDir:     cfg.DataDir,
			MaxUploadMB: cfg.MaxUploadMB,
			AllowAll:    cfg.AllowAllOrigins,
		}, app.database, app.pipeline, engine)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "docchat server v%s starting on port %d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Data dir: %s\n", cfg.DataDir)
		fmt.Fprintf(os.Stderr, "  Chunks indexed: %d\n", app.vectors.Count())

		return srv.Start()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
