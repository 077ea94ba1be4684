package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	configFile := flag.String("config", "", "Configuration file to load (e.g., .env, .dev.env)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "postx - MCP server for posting to X (Twitter)\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		fmt.Fprintf(os.Stderr, "  -config string\n")
		fmt.Fprintf(os.Stderr, "        Configuration file to load (default: none)\n")
		fmt.Fprintf(os.Stderr, "        Examples: .env, .dev.env\n")
		fmt.Fprintf(os.Stderr, "  -help, -h\n")
		fmt.Fprintf(os.Stderr, "        Show this help information\n\n")
		fmt.Fprintf(os.Stderr, "Required environment variables:\n")
		fmt.Fprintf(os.Stderr, "  %s, %s, %s, %s\n\n", ENV_X_API_KEY, ENV_X_API_KEY_SECRET, ENV_X_ACCESS_TOKEN, ENV_X_ACCESS_TOKEN_SECRET)
		fmt.Fprintf(os.Stderr, "Get credentials at https://developer.x.com/\n")
		fmt.Fprintf(os.Stderr, "Note: Environment variables override config file values\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *configFile != "" {
		if err := godotenv.Load(*configFile); err != nil {
			log.Printf("Warning: Failed to load config file %s: %v", *configFile, err)
			log.Println("Continuing with environment variables...")
		} else {
			log.Printf("Loaded configuration from %s", *configFile)
		}
	}

	container, err := BuildContainer()
	if err != nil {
		log.Fatalf("Failed to build container: %v", err)
	}

	err = container.Invoke(func(app *Application) {
		if err := app.Initialize(); err != nil {
			log.Fatalf("Failed to initialize application: %v", err)
		}
		defer app.Shutdown()

		if err := app.Run(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
}
