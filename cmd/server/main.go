package main

import (
	"flag"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"graminhealth/config"
	"graminhealth/internal/chat"
	"graminhealth/internal/emergency"
	"graminhealth/internal/genai"
	httpserver "graminhealth/internal/http"
	"graminhealth/internal/locator"
	"graminhealth/internal/registry"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// A provider that cannot be constructed (e.g. missing credential) is
	// not fatal: sessions degrade to a disconnected state and answer with
	// the connection-trouble error turn instead of crashing the flow.
	client, err := genai.New(genai.ProviderConfig{
		Provider: cfg.GenAI.Provider,
		APIKey:   cfg.GenAI.APIKey,
		Model:    cfg.GenAI.Model,
		BaseURL:  cfg.GenAI.BaseURL,
		Timeout:  cfg.GenAI.Timeout,
	})
	if err != nil {
		log.Printf("genai client unavailable, flows will degrade: %v", err)
		client = genai.Unavailable{Reason: err}
	}

	newSession := func() *chat.Session {
		return chat.NewSession(client, chat.WithMessageCap(cfg.Chat.MessageCap))
	}
	loc := locator.New(client, nil)
	dir := emergency.New(nil, cfg.Emergency.Contacts...)

	srv := httpserver.NewServer(registry.New(), newSession, loc, dir, nil)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	srv.Register(e)

	log.Printf("Listening on %s", cfg.Server.Address)
	if err := e.Start(cfg.Server.Address); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
