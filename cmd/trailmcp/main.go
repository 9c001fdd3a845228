package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/NERVsystems/trailmcp/pkg/config"
	"github.com/NERVsystems/trailmcp/pkg/server"
	"github.com/NERVsystems/trailmcp/pkg/version"
)

// clientServerKey names this server inside the client's mcpServers map.
const clientServerKey = "TrailMate"

var (
	showVersionFlag bool
	debug           bool
	configPath      string
	transport       string
	generateConfig  string
)

func init() {
	flag.BoolVar(&showVersionFlag, "version", false, "Display version information")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.StringVar(&configPath, "config", "", "Path to a config file (default: config.yaml in ., ./config or $HOME/.trailmcp)")
	flag.StringVar(&transport, "transport", "", "Override server.transport (stdio or http)")
	flag.StringVar(&generateConfig, "generate-config", "", "Generate a Claude Desktop Client config file at the specified path")
}

func main() {
	flag.Parse()

	// Show version and exit if requested
	if showVersionFlag {
		showVersion()
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if debug {
		cfg.Log.Level = "debug"
	}
	if transport != "" {
		cfg.Server.Transport = transport
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "invalid -transport: %v\n", err)
			os.Exit(1)
		}
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	// Generate Claude Desktop config if requested
	if generateConfig != "" {
		if err := generateClientConfig(generateConfig, configPath); err != nil {
			logger.Error("failed to generate config", "error", err)
			os.Exit(1)
		}
		logger.Info("successfully generated Claude Desktop Client config", "path", generateConfig)
		return
	}

	logger.Info("starting trail MCP server",
		"version", version.BuildVersion,
		"log_level", config.ParseLevel(cfg.Log.Level).String(),
		"transport", cfg.Server.Transport)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create and run the MCP server
	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	logger.Info("server initialized, waiting for requests")
	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// validateConfigPath rejects paths that are empty, not .json, or that
// climb out of the working tree.
func validateConfigPath(outputPath string) error {
	if outputPath == "" {
		return errors.New("config path must not be empty")
	}
	if !strings.EqualFold(filepath.Ext(outputPath), ".json") {
		return fmt.Errorf("config path %q must have a .json extension", outputPath)
	}
	for _, part := range strings.Split(filepath.ToSlash(outputPath), "/") {
		if part == ".." {
			return fmt.Errorf("config path %q must not contain '..'", outputPath)
		}
	}
	return nil
}

// generateClientConfig creates or updates a Claude Desktop Client config
// file, preserving unrelated keys.
func generateClientConfig(outputPath, serverConfigPath string) error {
	logger := slog.Default()

	if err := validateConfigPath(outputPath); err != nil {
		return err
	}

	// Get absolute path to executable
	execPath, err := os.Executable()
	if err != nil {
		execPath = os.Args[0] // Fallback to args if cannot get executable path
	}
	absExecPath, err := filepath.Abs(execPath)
	if err != nil {
		absExecPath = execPath // Use as is if cannot resolve absolute path
	}

	args := []string{}
	if serverConfigPath != "" {
		absConfig, err := filepath.Abs(serverConfigPath)
		if err != nil {
			return fmt.Errorf("failed to resolve config path: %w", err)
		}
		args = append(args, "-config", absConfig)
	}

	serverEntry := map[string]any{
		"command": absExecPath,
		"args":    args,
	}

	config := make(map[string]any)
	data, err := os.ReadFile(outputPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &config); err != nil {
			logger.Warn("existing config is not valid JSON, will create new", "error", err)
			config = make(map[string]any)
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to read existing config: %w", err)
	}

	// Check if mcpServers exists, create it if not
	mcpServers, ok := config["mcpServers"].(map[string]any)
	if !ok {
		mcpServers = make(map[string]any)
		config["mcpServers"] = mcpServers
	}
	mcpServers[clientServerKey] = serverEntry

	data, err = json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(outputPath, 0o600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	return nil
}

// showVersion displays version information and exits
func showVersion() {
	fmt.Println(version.String())
}
