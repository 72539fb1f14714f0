package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"deckforge/deck"
	"deckforge/generator"
	"deckforge/server"
)

var verbose bool

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	configPath := flag.String("config", "config/config.json", "path to config.json")
	textPath := flag.String("text", "", "path to the source text file")
	templatePath := flag.String("template", "", "path to the .pptx/.potx template")
	outPath := flag.String("out", deck.DefaultFileName, "output deck path")
	guidance := flag.String("guidance", "", "one-line guidance for the outline")
	notes := flag.Bool("notes", false, "include speaker notes")
	provider := flag.String("provider", "", "llm provider (overrides config)")
	model := flag.String("model", "", "llm model (overrides config)")
	apiKey := flag.String("api-key", "", "llm api key (overrides config)")
	baseURL := flag.String("base-url", "", "llm base url (overrides config)")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	flag.BoolVar(&verbose, "v", false, "enable info logs")
	flag.Parse()

	cfg := loadConfig(*configPath, *serve)

	// Web server mode
	if *serve {
		srv, err := server.New(cfg, verbose, log.Default())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		if listen == "" {
			listen = ":8080"
		}
		log.Printf("Starting web server on %s", listen)
		if err := http.ListenAndServe(listen, srv.Routes()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if *textPath == "" || *templatePath == "" {
		fmt.Fprintln(os.Stderr, "--text and --template are required")
		os.Exit(1)
	}

	text, err := os.ReadFile(*textPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	tplBytes, err := os.ReadFile(*templatePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	llm := buildLLM(cfg, *provider, *model, *apiKey, *baseURL)
	agent := generator.NewAgent(llm)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	outline, err := agent.Normalize(ctx, generator.Request{
		Text:      string(text),
		Guidance:  *guidance,
		WithNotes: *notes,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Printf("[cli] outlined %d slides from %s", len(outline), *textPath)

	pkg, err := deck.OpenPackage(tplBytes)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	out, err := deck.NewAssembler(verbose, log.Default()).Build(outline, deck.Introspect(pkg))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := os.WriteFile(*outPath, out, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Printf("[cli] deck written to %s", *outPath)
	fmt.Println(*outPath)
}

// loadConfig reads the config file when present. The CLI runs fine without
// one; the server mode logs the miss and starts heuristic-only.
func loadConfig(path string, serving bool) server.Config {
	cfg, err := server.LoadConfig(path)
	if err != nil {
		if serving || verbose {
			log.Printf("config %s not loaded (%v), continuing without defaults", path, err)
		}
		return server.Config{}
	}
	return cfg
}

// buildLLM resolves the provider from flags over config. No provider means
// heuristic outlining only.
func buildLLM(cfg server.Config, provider, model, apiKey, baseURL string) generator.LLMClient {
	settings := cfg.LLM.Settings()
	if provider != "" {
		settings.Provider = provider
	}
	if model != "" {
		settings.Model = model
	}
	if apiKey != "" {
		settings.APIKey = apiKey
	}
	if baseURL != "" {
		settings.BaseURL = baseURL
	}
	if settings.Provider == "" || strings.EqualFold(settings.Provider, "none") {
		return nil
	}
	llm, err := generator.NewLLMClient(settings)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return llm
}
