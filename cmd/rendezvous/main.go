package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/rahul/rendezvous/internal/agent"
	"github.com/rahul/rendezvous/internal/gateway"
	"github.com/rahul/rendezvous/internal/governance"
	"github.com/rahul/rendezvous/internal/observability"
	"github.com/rahul/rendezvous/internal/providers"
	"github.com/rahul/rendezvous/pkg/config"
)

func main() {
	observability.PrintBanner()
	observability.InitializeTerminal()

	// Route all log output through the terminal mutex so it never
	// interrupts the dashboard's cursor save/restore sequence.
	log.SetOutput(observability.NewTermWriter())

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal(err)
	}

	logger := observability.NewLogger()
	prompts := agent.NewPromptManager(cfg.App.PromptsDir)

	// Providers. Places falls back to demo venues when no key is set, so the
	// pipeline works end to end out of the box.
	weather := providers.NewWeatherClient(cfg.Services.Weather.APIKey)
	places := providers.NewPlacesClient(cfg.Services.Places.APIKey)
	unsplash := providers.NewUnsplashClient(cfg.Services.Unsplash.APIKey)

	// LLM is optional: without one the planner uses its deterministic
	// fallback strategy.
	var llm llms.Model
	pName, pCfg := cfg.GetDefaultLLM()
	switch pName {
	case "":
		log.Println("No LLM provider configured, planner will use fallback strategy")
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(pCfg.APIKey),
			openai.WithModel(pCfg.Model),
		}
		if pCfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(pCfg.BaseURL))
		}
		llm, err = openai.New(opts...)
		if err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("Provider %s not yet implemented in main", pName)
	}

	planner := agent.NewPlanner(llm, cfg.Planner, prompts, logger)
	executor := agent.NewExecutor(weather, places, unsplash, logger)

	// Keep LLM-authored venue queries family safe.
	policy := governance.NewDefaultPolicyEngine()
	_ = policy.DenyArguments(`(?i)\b(strip club|casino|escort)\b`)
	executor.SetPolicy(policy)
	verifier := agent.NewVerifier(cfg.Planner.Currency, logger)
	pipeline := agent.NewPipeline(planner, executor, verifier, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateways := []gateway.Messenger{}

	httpGw := gateway.NewHTTPGateway(cfg.Server.Addr, pipeline, logger)
	gateways = append(gateways, httpGw)

	if tgCfg, ok := cfg.GetGateway("telegram"); ok {
		tg, err := gateway.NewTelegramGateway(tgCfg.Token, pipeline)
		if err != nil {
			log.Printf("Warning: Failed to initialize telegram gateway: %v", err)
		} else {
			gateways = append(gateways, tg)
		}
	}

	if dcCfg, ok := cfg.GetGateway("discord"); ok {
		dc, err := gateway.NewDiscordGateway(dcCfg.Token, pipeline)
		if err != nil {
			log.Printf("Warning: Failed to initialize discord gateway: %v", err)
		} else {
			gateways = append(gateways, dc)
		}
	}

	// Start Live Resource Dashboard (1-second updates)
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.PrintLiveStatus()
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.Heartbeat()
				logger.LogHeartbeat()
			}
		}
	}()

	for _, gw := range gateways {
		gw := gw
		go func() {
			if err := gw.Start(); err != nil {
				log.Printf("\033[91m[ FAIL ] GATEWAY CRITICAL ERROR: %v\033[0m", err)
				stop()
			}
		}()
	}

	// Wait for shutdown signal
	<-ctx.Done()

	for _, gw := range gateways {
		if err := gw.Stop(); err != nil {
			log.Printf("Error stopping gateway: %v", err)
		}
	}

	// Reset terminal aesthetics
	observability.CleanupTerminal()

	// Give a short time for final logs/syncs
	time.Sleep(500 * time.Millisecond)
	log.Println("\033[95m[ EXIT ] CORE DE-INITIALIZED. GOODBYE.\033[0m")
}
