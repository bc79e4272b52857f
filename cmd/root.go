package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cratedocs/internal/config"
	"cratedocs/internal/mcp"
)

var rootCmd = &cobra.Command{
	Use:   "cratedocs",
	Short: "Rust crate documentation MCP server",
	Long: `cratedocs serves Rust crate documentation over MCP: crates.io
metadata, the sparse registry index, and full API docs decoded from
docs.rs rustdoc JSON. Running without a subcommand starts the stdio
server.`,
	Run: runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("command failed: %v", err)
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP over stdio",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func loadConfig() *config.Config {
	if err := config.InitializeViper(); err != nil {
		log.Fatalf("initializing config: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	return cfg
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	server, err := mcp.NewServer(cfg)
	if err != nil {
		log.Fatalf("failed to create MCP server: %v", err)
	}

	errCh := make(chan error)
	go func() { errCh <- server.Run() }()

	if err := waitForSignal(errCh); err != nil {
		log.Fatalf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}

func waitForSignal(errCh chan error) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		log.Printf("received signal: %s", sig)
		return nil
	case err := <-errCh:
		return err
	}
}
