package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"recipe-box/internal/auth"
	"recipe-box/internal/clipper"
	"recipe-box/internal/config"
	"recipe-box/internal/database"
	"recipe-box/internal/ingredient"
	"recipe-box/internal/llm"
	"recipe-box/internal/metrics"
	"recipe-box/internal/recipe"
	"recipe-box/internal/user"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "import-ingredients":
		importCmd := flag.NewFlagSet("import-ingredients", flag.ExitOnError)
		path := importCmd.String("file", "ingredients.csv", "Path to the CSV file")
		importCmd.Parse(os.Args[2:])

		f, err := os.Open(*path)
		if err != nil {
			log.Fatalf("Failed to open %s: %v", *path, err)
		}
		defer f.Close()

		repo := ingredient.NewRepository(db.SQL)
		created, err := ingredient.ImportCSV(ctx, repo, f)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		fmt.Printf("Imported %d new ingredients.\n", created)
	case "create-user":
		createCmd := flag.NewFlagSet("create-user", flag.ExitOnError)
		email := createCmd.String("email", "", "Email address")
		username := createCmd.String("username", "", "Username")
		firstName := createCmd.String("first-name", "", "First name")
		lastName := createCmd.String("last-name", "", "Last name")
		password := createCmd.String("password", "", "Password")
		createCmd.Parse(os.Args[2:])

		u := &user.User{
			Email:     *email,
			Username:  *username,
			FirstName: *firstName,
			LastName:  *lastName,
		}
		if err := u.Validate(); err != nil {
			log.Fatalf("Invalid user: %v", err)
		}
		if err := u.HashPassword(*password); err != nil {
			log.Fatalf("Invalid password: %v", err)
		}
		repo := user.NewRepository(db.SQL)
		if _, err := repo.Create(ctx, u); err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}
		fmt.Printf("Created user %s (id %d).\n", u.Username, u.ID)
	case "make-token":
		tokenCmd := flag.NewFlagSet("make-token", flag.ExitOnError)
		userID := tokenCmd.Int64("user", 0, "User ID to issue a token for")
		tokenCmd.Parse(os.Args[2:])

		tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
		token, err := tokens.Issue(*userID)
		if err != nil {
			log.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Println(token)
	case "clip":
		if len(os.Args) < 3 {
			log.Fatal("Usage: recipebox clip <url>")
		}
		if cfg.GeminiAPIKey == "" {
			log.Fatal("GEMINI_API_KEY environment variable not set")
		}

		gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		defer gemini.Close()

		clip := clipper.NewClipper(gemini)
		clipped, meta, err := clip.ClipURL(ctx, os.Args[2])
		if err != nil {
			log.Fatalf("Clip failed: %v", err)
		}

		usage := metrics.NewStore(db.SQL)
		if err := usage.Record(ctx, metrics.MapUsage("Clipper", meta.Usage, meta.Latency)); err != nil {
			log.Printf("Failed to record usage: %v", err)
		}

		fmt.Printf("%s (%d min)\n", clipped.Title, clipped.CookingTime)
		for _, ing := range clipped.Ingredients {
			fmt.Printf("  %s: %d %s\n", ing.Name, ing.Amount, ing.Unit)
		}
	case "metrics-report":
		reportCmd := flag.NewFlagSet("metrics-report", flag.ExitOnError)
		days := reportCmd.Int("days", 7, "Report usage for the last N days")
		reportCmd.Parse(os.Args[2:])

		usage := metrics.NewStore(db.SQL)
		daily, err := usage.GetDailyUsage(ctx, *days)
		if err != nil {
			log.Fatalf("Failed to query usage: %v", err)
		}
		if len(daily) == 0 {
			fmt.Println("No LLM usage recorded.")
			break
		}
		fmt.Printf("%-12s %10s %12s %6s\n", "Date", "Prompt", "Completion", "Calls")
		for _, d := range daily {
			fmt.Printf("%-12s %10d %12d %6d\n", d.Date, d.TotalPrompt, d.TotalCompletion, d.TotalExecution)
		}
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		usage := metrics.NewStore(db.SQL)
		affected, err := usage.Cleanup(ctx, *days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old usage records.\n", affected)
	case "list-recipes":
		repo := recipe.NewRepository(db.SQL)
		recipes, err := repo.List(ctx, recipe.Filter{})
		if err != nil {
			log.Fatalf("Failed to list recipes: %v", err)
		}
		for _, r := range recipes {
			fmt.Printf("%s  %s (%d min)\n", r.ID, r.Name, r.CookingTime)
		}
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: recipebox <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  import-ingredients   Load ingredients from a CSV file")
	fmt.Println("  create-user          Create a user account")
	fmt.Println("  make-token           Issue an access token for a user")
	fmt.Println("  clip                 Extract a recipe from a web page")
	fmt.Println("  metrics-report       Show daily LLM token usage")
	fmt.Println("  metrics-cleanup      Remove old LLM usage records")
	fmt.Println("  list-recipes         Print all stored recipes")
}