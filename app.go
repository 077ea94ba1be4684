package main

import (
	"context"
	"log"

	"github.com/grutapig/postx/mcp"
)

type Application struct {
	config   *Config
	server   *mcp.Server
	ledger   *LedgerService
	notifier *TelegramNotifier
}

func NewApplication(config *Config, server *mcp.Server, ledger *LedgerService, notifier *TelegramNotifier) (*Application, error) {
	return &Application{
		config:   config,
		server:   server,
		ledger:   ledger,
		notifier: notifier,
	}, nil
}

func (app *Application) Initialize() error {
	log.Println("Credentials validated")
	log.Printf("Ledger database: %s", app.config.LedgerDBPath)
	if app.notifier.Enabled() {
		log.Println("Telegram notifications enabled")
	}
	return nil
}

// Run serves MCP on stdin/stdout until the client disconnects. All
// logging goes to stderr, stdout belongs to the protocol.
func (app *Application) Run() error {
	log.Printf("%s %s serving MCP on stdio", SERVER_NAME, SERVER_VERSION)
	return app.server.Serve(context.Background())
}

func (app *Application) Shutdown() {
	if err := app.ledger.Close(); err != nil {
		log.Printf("Error closing ledger database: %v", err)
	}
	log.Println("Shutdown complete")
}
