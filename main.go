// Command platepush starts the Plate Push game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Defaults come from the environment (and an optional .env file); flags
// override them. ngrok tunneling is available for external access during
// development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/platepush/api"
	"github.com/wricardo/mcp-training/platepush/game/config"
	"github.com/wricardo/mcp-training/platepush/game/service"
	"github.com/wricardo/mcp-training/platepush/game/session"
	"github.com/wricardo/mcp-training/platepush/settings"
	"github.com/wricardo/mcp-training/platepush/transport/mcp"
	"github.com/wricardo/mcp-training/platepush/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Plate Push Server"
)

// options is the resolved command line
type options struct {
	host         string
	port         int
	configDir    string
	debug        bool
	version      bool
	ngrokEnabled bool
	ngrokAuth    string
	ngrokDomain  string
	mode         string
}

// parseFlags reads args on top of the environment settings. Unset flags keep
// the settings value.
func parseFlags(s *settings.Settings, args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("platepush", flag.ContinueOnError)
	fs.IntVar(&opts.port, "port", s.Port, "HTTP server port")
	fs.StringVar(&opts.host, "host", s.Host, "HTTP server host")
	fs.StringVar(&opts.configDir, "config-dir", s.ConfigDir, "Directory containing level configurations")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&opts.version, "version", false, "Show version information")
	fs.BoolVar(&opts.ngrokEnabled, "ngrok", s.NgrokEnabled, "Enable ngrok tunnel")
	fs.StringVar(&opts.ngrokAuth, "ngrok-auth", s.NgrokAuthToken, "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	fs.StringVar(&opts.ngrokDomain, "ngrok-domain", s.NgrokDomain, "Custom ngrok domain (optional)")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts.mode = "server"
	if fs.NArg() > 0 {
		opts.mode = fs.Arg(0)
	}
	return opts, nil
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintf(out, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
	fmt.Fprintf(out, "%s v%s\n\n", AppName, Version)
	fmt.Fprintf(out, "Available modes:\n")
	fmt.Fprintf(out, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
	fmt.Fprintf(out, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
	fmt.Fprintf(out, "  mcp-stdio        Alias for stdio-mcp\n")
	fmt.Fprintf(out, "  mcp              Alias for stdio-mcp\n")
	fmt.Fprintf(out, "\nOptions:\n")
	fs.PrintDefaults()
	fmt.Fprintf(out, "\nEnvironment:\n")
	fmt.Fprintf(out, "  SESSION_STORE=file|sqlite, SESSIONS_DIR, SESSION_DB, SESSION_TTL,\n")
	fmt.Fprintf(out, "  SESSION_CLEANUP_INTERVAL, SESSION_SYNC_INTERVAL, PLATEPUSH_API_URL\n")
	fmt.Fprintf(out, "\nExamples:\n")
	fmt.Fprintf(out, "  %s                    # Run HTTP server on default port 8080\n", os.Args[0])
	fmt.Fprintf(out, "  %s -port 9090         # Run HTTP server on port 9090\n", os.Args[0])
	fmt.Fprintf(out, "  %s stdio-mcp          # Run MCP stdio server\n", os.Args[0])
}

// main loads settings, initializes services, and starts the selected mode.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	cfg, err := settings.Load()
	if err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	opts, err := parseFlags(cfg, os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if opts.version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	if opts.debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	cfg.Host, cfg.Port, cfg.ConfigDir = opts.host, opts.port, opts.configDir

	log.Printf("Starting %s v%s (mode: %s)", AppName, Version, opts.mode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gameService, closeStore, err := initializeServices(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	defer closeStore()

	switch opts.mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCPWithInternalServer(ctx, cfg, gameService)

	case "server", "http":
		runHTTPServer(ctx, cfg, opts, gameService)

	default:
		log.Fatalf("Unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", opts.mode)
	}
}

// newRouter mounts the API at the root and the MCP message endpoint at /mcp
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))
	return mainRouter
}

// mcpHandler answers one JSON-RPC message per POST
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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
	}
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, cfg *settings.Settings, opts *options, gameService service.GameService) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	apiServer := api.NewServer(gameService, hub)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	mainRouter := newRouter(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	if opts.ngrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, opts, mainRouter)
		}()
	}

	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
}

// runNgrok serves handler through an ngrok tunnel until ctx ends
func runNgrok(ctx context.Context, opts *options, handler http.Handler) {
	authToken := opts.ngrokAuth
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTH_TOKEN") // underscore spelling
	}
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if opts.ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.ngrokDomain))
		log.Printf("Using custom ngrok domain: %s", opts.ngrokDomain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	// http.Serve only returns once the listener closes
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// openPersistence builds the session store selected by SESSION_STORE
func openPersistence(cfg *settings.Settings, configManager service.ConfigManager) (session.SessionPersistence, func(), error) {
	switch cfg.SessionStore {
	case settings.StoreSQLite:
		store, err := session.NewSQLitePersistence(cfg.SessionDB, configManager)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Sessions stored in sqlite database %s", cfg.SessionDB)
		return store, func() {
			if err := store.Close(); err != nil {
				log.Printf("Failed to close session database: %v", err)
			}
		}, nil
	default:
		store, err := session.NewFilePersistence(cfg.SessionsDir, configManager)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Sessions stored in %s", cfg.SessionsDir)
		return store, func() {}, nil
	}
}

// initializeServices wires session/config managers and the game service.
// It also starts background routines that prune stale sessions until ctx ends.
func initializeServices(ctx context.Context, cfg *settings.Settings) (service.GameService, func(), error) {
	configManager, err := config.NewManager(cfg.ConfigDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, closeStore, err := openPersistence(cfg, configManager)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence)

	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.Printf("Warning: Failed to load persisted sessions: %v", err)
	}

	gameService := service.NewGameService(sessionManager, configManager)

	go sessionCleanupRoutine(ctx, sessionManager, cfg.CleanupInterval, cfg.SessionTTL)
	go storeSyncRoutine(ctx, sessionManager, persistence, cfg.SyncInterval)

	return gameService, closeStore, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the retention window.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				log.Printf("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// storeSyncRoutine periodically drops in-memory sessions whose stored copy is gone.
func storeSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := pruneOrphans(manager, persistence); pruned > 0 {
				log.Printf("Store sync: pruned %d orphaned sessions from memory", pruned)
			}
		}
	}
}

// pruneOrphans removes sessions from memory that no longer exist in the store
func pruneOrphans(manager *session.Manager, persistence session.SessionPersistence) int {
	if persistence == nil {
		return 0
	}

	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			log.Printf("Pruned session %s from memory (store entry deleted)", sess.ID)
		}
	}
	return pruned
}

// probeAPI reports whether a usable API answers at baseURL
func probeAPI(baseURL string) bool {
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse the external API from PLATEPUSH_API_URL; if unavailable, it
// starts a minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, cfg *settings.Settings, gameService service.GameService) {
	baseURL := cfg.ExternalAPI
	external := true

	log.Printf("Checking for external API server at %s...", baseURL)

	if probeAPI(baseURL) {
		log.Printf("External API server found at %s, using it for MCP", baseURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")
		external = false

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			log.Fatalf("Failed to get available port: %v", err)
		}
		internalAddr := listener.Addr().String()

		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		hub := websocket.NewHub()
		go hub.Run(ctx)

		httpServer := &http.Server{
			Handler: api.NewServer(gameService, hub),
		}
		defer httpServer.Close()

		// The listener is already bound, so requests queue until Serve starts
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)

	if external {
		log.Println("MCP stdio server ready (using external HTTP server)")
	} else {
		log.Println("MCP stdio server ready (using internal HTTP server)")
	}

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		log.Fatalf("MCP stdio server error: %v", err)
	}
}
