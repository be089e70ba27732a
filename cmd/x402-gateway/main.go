// Command x402-gateway runs a demo seller gateway: a chi router whose
// premium routes sit behind the x402 paywall middleware.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"gopkg.in/yaml.v3"

	"github.com/paygate-labs/x402-verify-go/core"
	"github.com/paygate-labs/x402-verify-go/facilitator"
	"github.com/paygate-labs/x402-verify-go/middleware"
	"github.com/paygate-labs/x402-verify-go/types"
)

// config is the gateway configuration file.
type config struct {
	Listen         string   `yaml:"listen"`
	Amount         string   `yaml:"amount"`
	PayTo          string   `yaml:"pay_to"`
	Network        string   `yaml:"network"`
	Testnet        bool     `yaml:"testnet"`
	Description    string   `yaml:"description"`
	FacilitatorURL string   `yaml:"facilitator_url"`
	Fallback       string   `yaml:"facilitator_fallback"`
	ExemptPaths    []string `yaml:"exempt_paths"`
}

func loadConfig(path string) (config, error) {
	cfg := config{
		Listen:         ":8080",
		Amount:         "0.0001",
		Testnet:        true,
		FacilitatorURL: facilitator.DefaultURL,
		Fallback:       string(middleware.FallbackError),
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

func main() {
	configPath := flag.String("config", "x402-gateway.yaml", "path to the gateway config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	engine := &core.Engine{
		Nonces:       core.NewNonceCache(),
		Facilitators: facilitator.NewPool(),
	}

	paywall := middleware.Config{
		Requirements: types.RequirementsConfig{
			Amount:      cfg.Amount,
			PayTo:       cfg.PayTo,
			Network:     types.Network(cfg.Network),
			Description: cfg.Description,
			Testnet:     cfg.Testnet,
		},
		FacilitatorURL: cfg.FacilitatorURL,
		Fallback:       middleware.FallbackPolicy(cfg.Fallback),
		ExemptPaths:    cfg.ExemptPaths,
		Engine:         engine,
	}

	// Reject obviously broken configuration at startup, not per request.
	if _, err := paywall.Requirements.Build("/"); err != nil {
		log.Fatalf("invalid payment configuration: %v", err)
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	premium := middleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"content":"premium","served_at":%q}`, time.Now().UTC().Format(time.RFC3339))
	}), paywall)
	r.Handle("/premium", premium)
	r.Handle("/premium/*", premium)

	log.Printf("x402 gateway listening on %s (network defaults: testnet=%v)", cfg.Listen, cfg.Testnet)
	if err := http.ListenAndServe(cfg.Listen, r); err != nil {
		log.Fatal(err)
	}
}
