package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	mcpadapter "pdflens/internal/adapters/mcp"
	"pdflens/internal/bootstrap"
	"pdflens/internal/config"
)

func main() {
	configFlag := flag.String("config", "", "path to a JSONC config file")
	cacheFlag := flag.String("cache-dir", "", "cache directory (default $XDG_CACHE_HOME/pdflens)")
	fingerprintFlag := flag.String("fingerprint", "", "document fingerprint: stat or content")
	dpiFlag := flag.Int("dpi", 0, "render resolution")
	flag.Parse()

	cfg, err := config.Load(config.LoadInput{
		ConfigPath: *configFlag,
		Env:        config.Environ(),
		Overrides: config.Config{
			CacheDir:    *cacheFlag,
			Fingerprint: *fingerprintFlag,
			DPI:         *dpiFlag,
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdflens-mcp: %v\n", err)
		os.Exit(1)
	}

	stack, err := bootstrap.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdflens-mcp: %v\n", err)
		os.Exit(1)
	}
	defer stack.Close()

	mcpServer := server.NewMCPServer(
		"pdflens-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)
	mcpadapter.RegisterTools(mcpServer, stack, stack, stack.Render)

	if err := server.ServeStdio(mcpServer); err != nil {
		fmt.Fprintf(os.Stderr, "pdflens-mcp: %v\n", err)
		stack.Close()
		os.Exit(1)
	}
}
