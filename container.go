package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/grutapig/postx/mcp"
	"github.com/grutapig/postx/xapi"
	"go.uber.org/dig"
)

type Config struct {
	Credentials    xapi.Credentials
	ProxyDSN       string
	LedgerDBPath   string
	TelegramAPIKey string
	TelegramChatID string
	InterPostDelay time.Duration
}

func ProvideConfig() (*Config, error) {
	creds := xapi.Credentials{
		APIKey:            os.Getenv(ENV_X_API_KEY),
		APIKeySecret:      os.Getenv(ENV_X_API_KEY_SECRET),
		AccessToken:       os.Getenv(ENV_X_ACCESS_TOKEN),
		AccessTokenSecret: os.Getenv(ENV_X_ACCESS_TOKEN_SECRET),
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	ledgerPath := os.Getenv(ENV_LEDGER_DATABASE_PATH)
	if ledgerPath == "" {
		ledgerPath = DEFAULT_LEDGER_DATABASE_PATH
	}

	delay := xapi.DefaultInterPostDelay
	if raw := os.Getenv(ENV_INTER_POST_DELAY_MS); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", ENV_INTER_POST_DELAY_MS, raw, err)
		}
		delay = time.Duration(ms) * time.Millisecond
	}

	return &Config{
		Credentials:    creds,
		ProxyDSN:       os.Getenv(ENV_PROXY_DSN),
		LedgerDBPath:   ledgerPath,
		TelegramAPIKey: os.Getenv(ENV_TELEGRAM_API_KEY),
		TelegramChatID: os.Getenv(ENV_TELEGRAM_ADMIN_CHAT_ID),
		InterPostDelay: delay,
	}, nil
}

func ProvideXClient(config *Config) (*xapi.Client, error) {
	return xapi.NewClient(config.Credentials, config.ProxyDSN)
}

func ProvideThreadOrchestrator(config *Config, client *xapi.Client) *xapi.ThreadOrchestrator {
	return xapi.NewThreadOrchestrator(client, config.InterPostDelay)
}

func ProvideLedgerService(config *Config) (*LedgerService, error) {
	return NewLedgerService(config.LedgerDBPath)
}

func ProvideTelegramNotifier(config *Config) (*TelegramNotifier, error) {
	return NewTelegramNotifier(config.TelegramAPIKey, config.TelegramChatID)
}

func ProvidePostTools(client *xapi.Client, orchestrator *xapi.ThreadOrchestrator, ledger *LedgerService, notifier *TelegramNotifier) *PostTools {
	return NewPostTools(client, orchestrator, ledger, notifier)
}

func ProvideMCPServer(tools *PostTools) *mcp.Server {
	return mcp.NewServer(SERVER_NAME, SERVER_VERSION, SERVER_INSTRUCTIONS, tools.Tools())
}

func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	if err := container.Provide(ProvideConfig); err != nil {
		return nil, fmt.Errorf("failed to provide config: %w", err)
	}

	if err := container.Provide(ProvideXClient); err != nil {
		return nil, fmt.Errorf("failed to provide X client: %w", err)
	}

	if err := container.Provide(ProvideThreadOrchestrator); err != nil {
		return nil, fmt.Errorf("failed to provide thread orchestrator: %w", err)
	}

	if err := container.Provide(ProvideLedgerService); err != nil {
		return nil, fmt.Errorf("failed to provide ledger service: %w", err)
	}

	if err := container.Provide(ProvideTelegramNotifier); err != nil {
		return nil, fmt.Errorf("failed to provide Telegram notifier: %w", err)
	}

	if err := container.Provide(ProvidePostTools); err != nil {
		return nil, fmt.Errorf("failed to provide post tools: %w", err)
	}

	if err := container.Provide(ProvideMCPServer); err != nil {
		return nil, fmt.Errorf("failed to provide MCP server: %w", err)
	}

	if err := container.Provide(NewApplication); err != nil {
		return nil, fmt.Errorf("failed to provide application: %w", err)
	}

	return container, nil
}
