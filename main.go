// Command gomoku runs the two-seat board game session server. It can run in
// two modes:
//  1. "server" (default) – runs the HTTP server exposing the REST API, the
//     WebSocket gameplay endpoint, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server against a running REST API
//
// The server includes graceful shutdown, a background idle-room reaper,
// and optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/duelboard/gomoku/api"
	"github.com/duelboard/gomoku/config"
	"github.com/duelboard/gomoku/game/room"
	"github.com/duelboard/gomoku/game/service"
	"github.com/duelboard/gomoku/transport/mcp"
	"github.com/duelboard/gomoku/transport/websocket"
)

const (
	AppName = "gomoku"
	Version = "1.0.0"
)

var (
	showVersion  = flag.Bool("version", false, "Print version and exit")
	listenAddr   = flag.String("addr", "", "Listen address (overrides LISTEN_ADDR)")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [mode]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server against a running API\n")
		fmt.Fprintf(os.Stderr, "  mcp              Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	mode := "server"
	if args := flag.Args(); len(args) > 0 {
		mode = args[0]
	}

	log.WithFields(logrus.Fields{
		"version": Version,
		"mode":    mode,
	}).Info("starting gomoku session server")

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCP(cfg, log)

	case "server", "http":
		runHTTPServer(cfg, log)

	default:
		log.Fatalf("Unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", mode)
	}
}

// runHTTPServer starts the HTTP server with the REST API, the WebSocket
// gameplay endpoint, and an /mcp proxy endpoint. If ngrok is enabled
// (via flag or environment), it also provisions a public tunnel.
func runHTTPServer(cfg config.Config, log *logrus.Logger) {
	registry := room.NewRegistry(cfg.DefaultUndoLimit, log)
	hub := websocket.NewHub(cfg.JWTSecret, log)
	svc := service.New(registry, hub, service.Options{
		GracePeriod: cfg.GracePeriod,
		ProposalTTL: cfg.ProposalTTL,
	}, log)
	hub.SetService(svc)

	apiServer := api.NewServer(svc, hub, log)

	// Create MCP client for the /mcp endpoint
	baseURL := fmt.Sprintf("http://localhost%s", cfg.ListenAddr)
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Idle rooms are reclaimed in the background for the whole lifetime
	// of the server.
	reaper := service.NewReaper(registry, cfg.SweepInterval, cfg.IdleTimeout, log)
	go reaper.Run(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.WithField("addr", cfg.ListenAddr).Info("HTTP server listening")
		log.Infof("REST API: http://localhost%s/api", cfg.ListenAddr)
		log.Infof("WebSocket: ws://localhost%s/ws?nickname=<name>", cfg.ListenAddr)
		log.Infof("MCP endpoint: http://localhost%s/mcp", cfg.ListenAddr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	ngrokShouldRun := *ngrokEnabled
	if !ngrokShouldRun {
		if envEnabled := os.Getenv("NGROK_ENABLED"); envEnabled == "true" || envEnabled == "1" {
			ngrokShouldRun = true
		}
	}

	if ngrokShouldRun {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, mainRouter, log)
		}()
	}

	sig := <-stop
	log.WithField("signal", sig.String()).Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info("server stopped")
}

// runNgrokTunnel provisions a public tunnel and serves the router
// through it until the context is canceled.
func runNgrokTunnel(ctx context.Context, handler http.Handler, log *logrus.Logger) {
	authToken := *ngrokAuth
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTHTOKEN")
	}
	if authToken == "" {
		log.Warn("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	domain := *ngrokDomain
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.WithField("domain", domain).Info("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.WithError(err).Error("failed to start ngrok tunnel")
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.WithError(err).Warn("failed to close ngrok tunnel")
		}
	}()

	log.WithField("url", tun.URL()).Info("ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Error("ngrok server error")
	}
	log.Info("ngrok tunnel closed")
}

// runStdioMCP serves the MCP tools over stdio against an already
// running HTTP API at the configured address.
func runStdioMCP(cfg config.Config, log *logrus.Logger) {
	baseURL := fmt.Sprintf("http://localhost%s", cfg.ListenAddr)
	log.WithField("api", baseURL).Info("starting MCP stdio server")

	mcpClient := mcp.NewClient(baseURL)
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		log.Fatalf("MCP stdio server failed: %v", err)
	}
}
