package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"resonance/internal/cmdlog"
	"resonance/internal/config"
	"resonance/internal/feedclient"
	"resonance/internal/jobs"
	"resonance/internal/metrics"
	"resonance/internal/model"
	"resonance/internal/recommend"
	"resonance/internal/store/snapshot"
	"resonance/internal/theme"
)

func main() {
	_ = godotenv.Load()
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "init":
		cmdInit()
	case "fetch":
		cmdFetch()
	case "recommend":
		cmdRecommend()
	case "stats":
		cmdStats()
	default:
		printHelp()
	}
}

func printHelp() {
	theme.PrintBanner()
	fmt.Println("Usage: resonance <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init        Create a config file at ./resonance.yaml")
	fmt.Println("  fetch       Pull all feeds into the local snapshot")
	fmt.Println("  recommend   Recommend posts for a username")
	fmt.Println("  stats       Show snapshot row counts and popularity leaders")
}

func cmdInit() {
	out := flag.NewFlagSet("init", flag.ExitOnError)
	path := out.String("path", "./resonance.yaml", "path to write config")
	_ = out.Parse(os.Args[2:])
	cfg := config.Default()
	if err := config.Save(*path, cfg); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	abs, _ := filepath.Abs(*path)
	theme.PrintBanner()
	fmt.Println("Config written to:", abs)
}

func cmdFetch() {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	cfgPath := fs.String("config", "./resonance.yaml", "config path")
	interval := fs.Duration("interval", 0, "refresh interval; 0 fetches once and exits")
	_ = fs.Parse(os.Args[2:])
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	if cfg.API.FlicToken == "" {
		fmt.Println("warning: missing FLIC_TOKEN; API calls will fail")
	}
	metrics.StartServer(cfg.Metrics.Addr)
	db, err := snapshot.Open(cfg.Storage.DBPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	defer db.Close()
	client := feedclient.NewHTTPClient(cfg.API.BaseURL, cfg.API.FlicToken, cfg.API.Algorithm)
	err = cmdlog.Run("fetch", func() error {
		if *interval > 0 {
			return jobs.RunFetchLoop(context.Background(), db, client, cfg, *interval)
		}
		return jobs.RunFetchOnce(context.Background(), db, client, cfg)
	})
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	fmt.Println("Snapshot refreshed.")
}

func cmdRecommend() {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	cfgPath := fs.String("config", "./resonance.yaml", "config path")
	user := fs.String("user", "", "username to recommend for (default from config)")
	top := fs.Int("top", 0, "number of recommendations (default from config)")
	_ = fs.Parse(os.Args[2:])
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	username := *user
	if username == "" {
		username = cfg.Account.Username
	}
	topN := *top
	if topN <= 0 {
		topN = cfg.Recommend.TopN
	}
	db, err := snapshot.Open(cfg.Storage.DBPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	defer db.Close()
	err = cmdlog.Run("recommend", func() error {
		ctx := context.Background()
		users, err := db.LoadUsers(ctx)
		if err != nil {
			return err
		}
		posts, err := db.LoadPosts(ctx)
		if err != nil {
			return err
		}
		likes, err := db.LoadLikedPosts(ctx)
		if err != nil {
			return err
		}
		r := recommend.NewRecommender(users, posts, likes)
		recs, err := r.For(username, topN)
		if errors.Is(err, recommend.ErrUserNotFound) {
			// Expected outcome, not a fault: report and exit clean.
			fmt.Printf("User '%s' not found. No recommendations can be made.\n", username)
			return nil
		}
		if err != nil {
			return err
		}
		if len(recs) > 0 && recs[0].Reason == recommend.ReasonPopular {
			metrics.FallbackSelections.Inc()
		}
		printRecommendations(username, recs)
		return nil
	})
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func printRecommendations(username string, recs []model.Recommendation) {
	if len(recs) > 0 && recs[0].Reason == recommend.ReasonPopular {
		fmt.Printf("No liked posts found for '%s'. Recommending popular posts:\n", username)
		for _, rec := range recs {
			fmt.Printf("Post Title: %s\n", rec.Title)
			fmt.Printf("Views: %d\n", rec.ViewCount)
			fmt.Printf("Ratings: %d\n", rec.RatingCount)
			fmt.Printf("Link: %s\n\n", rec.Slug)
		}
		return
	}
	fmt.Printf("Recommendations for %s:\n", username)
	for _, rec := range recs {
		fmt.Printf("Post Title: %s (Reason: you liked posts with %s)\n", rec.Title, rec.Reason)
		fmt.Printf("Sentiment: %s\n", rec.Sentiment)
		fmt.Printf("Coin Rotation Action: %s\n", rec.Action)
		fmt.Printf("Link: %s\n\n", rec.Slug)
	}
}

func cmdStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	cfgPath := fs.String("config", "./resonance.yaml", "config path")
	top := fs.Int("top", 5, "popularity leaders to show")
	_ = fs.Parse(os.Args[2:])
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	db, err := snapshot.Open(cfg.Storage.DBPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	defer db.Close()
	err = cmdlog.Run("stats", func() error {
		ctx := context.Background()
		counts, err := db.Counts(ctx)
		if err != nil {
			return err
		}
		for _, t := range []string{"users", "posts", "liked_posts", "ratings", "viewed_posts"} {
			fmt.Printf("%-14s %d rows\n", t, counts[t])
		}
		posts, err := db.LoadPosts(ctx)
		if err != nil {
			return err
		}
		r := recommend.NewRecommender(nil, posts, nil)
		fmt.Println("Popularity leaders:")
		for _, rec := range r.Popular(*top) {
			fmt.Printf("  %s (views=%d ratings=%d)\n", rec.Title, rec.ViewCount, rec.RatingCount)
		}
		return nil
	})
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}
