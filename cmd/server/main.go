package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/outreach/internal/api"
	"github.com/ignite/outreach/internal/config"
	"github.com/ignite/outreach/internal/dispatch"
	"github.com/ignite/outreach/internal/mailer"
	"github.com/ignite/outreach/internal/pkg/logger"
	"github.com/ignite/outreach/internal/registry"
	"github.com/ignite/outreach/internal/resolver"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from a stale process occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

// buildTransport picks the initial mail backend: SES when enabled, SMTP
// when credentials exist, else the mock transport. The /api/config
// endpoint can swap in SMTP credentials at runtime.
func buildTransport(cfg *config.Config) *mailer.Switcher {
	switch {
	case cfg.SES.Enabled:
		log.Printf("[server] mail transport: SES (%s)", cfg.SES.Region)
		return mailer.NewSwitcher(mailer.NewSESSender(cfg.SES))
	case cfg.SMTP.User != "" && cfg.SMTP.Pass != "":
		log.Printf("[server] mail transport: SMTP (%s:%d)", cfg.SMTP.Host, cfg.SMTP.Port)
		return mailer.NewSwitcher(mailer.NewSMTPSender(cfg.SMTP))
	default:
		log.Println("[server] mail transport: mock (no credentials configured)")
		return mailer.NewSwitcher(nil)
	}
}

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	if cfg.Logging.RedactPII != nil {
		logger.SetRedactPII(*cfg.Logging.RedactPII)
	}

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	switcher := buildTransport(cfg)

	res := resolver.New(resolver.NewGravatarClient(cfg.Lookup), cfg.Lookup.BatchSize)
	reg := registry.New()
	eng := dispatch.NewEngine(switcher, cfg.Dispatch)

	server := api.NewServer(cfg, res, eng, reg, switcher)

	httpServer := &http.Server{
		Addr:              server.Addr(),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server is running on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM. Campaigns in flight are
	// in-memory only; stopping the process abandons them, which is the
	// documented durability model.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
