package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"rcip-agent/internal/app"
	"rcip-agent/internal/core/ai/cache"
	"rcip-agent/internal/core/ai/groq"
	"rcip-agent/internal/core/ai/service"
	"rcip-agent/internal/core/convert"
	"rcip-agent/internal/core/scrape"
	"rcip-agent/internal/core/search"
	"rcip-agent/internal/core/store"
	"rcip-agent/internal/infrastructure/config"
	"rcip-agent/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	if cfg.Groq.APIKey == "" {
		common.LogFatal("GROQ_API_KEY is not set")
	}

	common.LogInfo("agent starting",
		zap.String("version", cfg.App.Version),
		zap.String("model", cfg.Groq.Model),
		zap.String("groq_api_key", config.MaskAPIKey(cfg.Groq.APIKey)),
		zap.String("output_dir", cfg.Output.Dir),
	)

	recordStore, err := store.New(cfg.Output.Dir)
	if err != nil {
		common.LogFatal("failed to open output directory", zap.Error(err))
	}

	cacheStore, err := cache.New(cfg)
	if err != nil {
		common.LogFatal("failed to initialize cache", zap.Error(err))
	}
	if cacheStore != nil {
		defer cacheStore.Close()
	}

	aiService := service.NewService(groq.NewClient(&cfg.Groq), cacheStore)
	extractor := convert.NewExtractor(aiService, cfg.Convert.MinTextLength)
	pipeline := convert.NewPipeline(extractor, recordStore, &cfg.Convert)
	agent := app.NewAgent(cfg, search.NewDuckDuckGo(&cfg.Search), scrape.NewHTTPScraper(&cfg.Scrape), pipeline)

	runMenu(agent, recordStore, cfg)
}

func runMenu(agent *app.Agent, recordStore *store.Store, cfg *config.Config) {
	stdin := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	for {
		fmt.Println()
		fmt.Println("RCIP Recipe Agent - Choose Mode")
		fmt.Println("1. Interactive mode - enter recipes one by one")
		fmt.Println("2. Batch mode - process recipe list from file")
		fmt.Println("3. View current recipe list")
		fmt.Println("4. List existing recipes")
		fmt.Println("5. Exit")
		fmt.Print("Choose option (1-5): ")

		if !stdin.Scan() {
			fmt.Println("\nGoodbye!")
			return
		}

		switch strings.TrimSpace(stdin.Text()) {
		case "1":
			interactiveMode(ctx, agent, stdin)
		case "2":
			batchMode(ctx, agent, stdin, cfg.Output.RecipeList)
		case "3":
			viewRecipeList(cfg.Output.RecipeList)
		case "4":
			listExisting(recordStore)
		case "5":
			fmt.Println("Goodbye!")
			return
		default:
			fmt.Println("Invalid choice. Please select 1-5.")
		}
	}
}

func interactiveMode(ctx context.Context, agent *app.Agent, stdin *bufio.Scanner) {
	fmt.Println("Enter a recipe name to search and convert. Type 'menu' to return.")

	for {
		fmt.Print("\nRecipe name: ")
		if !stdin.Scan() {
			return
		}
		name := strings.TrimSpace(stdin.Text())

		switch strings.ToLower(name) {
		case "menu", "back", "m":
			return
		case "":
			fmt.Println("Please enter a recipe name.")
			continue
		}

		result, err := agent.ProcessRecipe(ctx, name)
		if err != nil {
			fmt.Printf("Failed to process %q: %v\n", name, err)
			continue
		}
		fmt.Printf("Saved %q as %s\n", name, result.Path)
	}
}

func batchMode(ctx context.Context, agent *app.Agent, stdin *bufio.Scanner, listPath string) {
	names, err := app.LoadRecipeList(listPath)
	if err != nil {
		fmt.Printf("Could not load recipe list: %v\n", err)
		return
	}
	if len(names) == 0 {
		fmt.Printf("Recipe list %s is empty.\n", listPath)
		return
	}

	fmt.Printf("Found %d recipes to process:\n", len(names))
	for i, name := range names {
		fmt.Printf("  %d. %s\n", i+1, name)
	}
	fmt.Printf("Process all %d recipes? (y/n): ", len(names))
	if !stdin.Scan() {
		return
	}
	if answer := strings.ToLower(strings.TrimSpace(stdin.Text())); answer != "y" && answer != "yes" {
		fmt.Println("Batch processing cancelled.")
		return
	}

	results := agent.ProcessBatch(ctx, names)

	succeeded := 0
	for _, r := range results {
		if r.Err == nil {
			succeeded++
		}
	}
	fmt.Printf("\nBatch finished: %d succeeded, %d failed\n", succeeded, len(results)-succeeded)
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("  failed: %s (%v)\n", r.Name, r.Err)
		}
	}
}

func viewRecipeList(listPath string) {
	names, err := app.LoadRecipeList(listPath)
	if err != nil {
		fmt.Printf("Could not load recipe list: %v\n", err)
		return
	}

	fmt.Printf("Current recipes (%d total):\n", len(names))
	for i, name := range names {
		fmt.Printf("  %d. %s\n", i+1, name)
	}
}

func listExisting(recordStore *store.Store) {
	entries, err := recordStore.List()
	if err != nil {
		fmt.Printf("Could not list recipes: %v\n", err)
		return
	}
	if len(entries) == 0 {
		fmt.Println("No recipes found.")
		return
	}

	for i, e := range entries {
		fmt.Printf("%2d. %s (ID: %s) - %s\n", i+1, e.Name, e.ID, e.File)
	}
	fmt.Printf("Total: %d recipes\n", len(entries))
}
