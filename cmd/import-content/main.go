package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/oxquiz/oxquiz/internal/config"
	"github.com/oxquiz/oxquiz/internal/importer"
	"github.com/oxquiz/oxquiz/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	contentPath := flag.String("content", "", "path to content YAML file")
	flag.Parse()

	if *contentPath == "" {
		fmt.Fprintln(os.Stderr, "usage: import-content -content <file> [-config <file>]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer pool.Close()

	imp := importer.New(
		postgres.NewQuizRepository(pool.DB(), cfg.Game.QuizBatchSize),
		postgres.NewNicknameRepository(pool.DB()),
	)
	report, err := imp.Run(ctx, *contentPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("imported %d quizzes, %d adjectives, %d nouns in %s\n",
		report.Quizzes, report.Adjectives, report.Nouns,
		report.Elapsed.Round(time.Millisecond))
}
