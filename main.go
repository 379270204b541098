package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/Project-Sylos/Nimbus/internal/config"
	"github.com/Project-Sylos/Nimbus/sdk"
	"github.com/dustin/go-humanize"
)

func main() {
	var (
		configPath = flag.String("config", "", "Configuration file path (YAML)")
		initPath   = flag.String("init", "", "Write a default configuration file to this path and exit")
		demo       = flag.Bool("demo", false, "Run a walk-through against a throwaway instance")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	switch {
	case *help:
		showHelp()
	case *initPath != "":
		writeDefaultConfig(*initPath)
	case *demo:
		runDemo(*configPath)
	default:
		showHelp()
	}
}

func showHelp() {
	fmt.Println("Nimbus - File Hosting Backend")
	fmt.Println("=============================")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  go run main.go [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -config string")
	fmt.Println("        Configuration file path (default: built-in defaults and NIMBUS_* env vars)")
	fmt.Println("  -init string")
	fmt.Println("        Write a default configuration file to this path")
	fmt.Println("  -demo")
	fmt.Println("        Run the SDK walk-through")
	fmt.Println("  -help")
	fmt.Println("        Show this help message")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  go run main.go -init configs/nimbus.yaml")
	fmt.Println("  go run main.go -demo")
	fmt.Println()
	fmt.Println("API Server:")
	fmt.Println("  go run cmd/api/main.go -config configs/nimbus.yaml")
}

func writeDefaultConfig(path string) {
	cfg := config.DefaultConfig()
	if err := config.SaveToFile(&cfg, path); err != nil {
		log.Fatalf("Failed to write config: %v", err)
	}
	fmt.Printf("Default configuration written to %s\n", path)
}

func runDemo(configPath string) {
	ctx := context.Background()

	var cfg *sdk.Config
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		cfg = loaded
	} else {
		dir, err := os.MkdirTemp("", "nimbus-demo-*")
		if err != nil {
			log.Fatalf("Failed to create demo directory: %v", err)
		}
		defer os.RemoveAll(dir)

		defaults := config.DefaultConfig()
		defaults.Database.Driver = "sqlite"
		defaults.Database.Path = filepath.Join(dir, "nimbus.db")
		defaults.Blob.Badger = map[string]any{"in_memory": true}
		cfg = &defaults
	}

	fmt.Println("Nimbus - SDK Demo")
	fmt.Println("=================")

	nimbus, err := sdk.NewWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Nimbus: %v", err)
	}
	defer nimbus.Close()

	alice, err := nimbus.Auth().SignUp(ctx, "alice@example.com", "demo-password")
	if err != nil {
		log.Fatalf("Failed to sign up alice: %v", err)
	}
	bob, err := nimbus.Auth().SignUp(ctx, "bob@example.com", "demo-password")
	if err != nil {
		log.Fatalf("Failed to sign up bob: %v", err)
	}
	fmt.Printf("Created users %s and %s\n", alice.Email, bob.Email)

	session := nimbus.For(alice.ID)

	folder, err := session.CreateFolder(ctx, "Reports", nil)
	if err != nil {
		log.Fatalf("Failed to create folder: %v", err)
	}
	fmt.Printf("Created folder %s (ID: %s)\n", folder.Name, folder.ID)

	file, err := session.Upload(ctx, sdk.Upload{
		Name:     "q3-report.txt",
		MimeType: "text/plain",
		Data:     []byte("Revenue is up."),
		ParentID: &folder.ID,
	})
	if err != nil {
		log.Fatalf("Failed to upload file: %v", err)
	}
	fmt.Printf("Uploaded %s (%s)\n", file.Name, humanize.IBytes(uint64(file.SizeBytes)))

	if _, err := session.Share(ctx, file.ID, bob.Email); err != nil {
		log.Fatalf("Failed to share file: %v", err)
	}
	shared, err := nimbus.For(bob.ID).SharedWithMe(ctx)
	if err != nil {
		log.Fatalf("Failed to list shared files: %v", err)
	}
	fmt.Printf("Bob sees %d shared file(s)\n", len(shared))

	url, err := nimbus.For(bob.ID).DownloadURL(ctx, file.ID)
	if err != nil {
		log.Fatalf("Failed to sign download URL: %v", err)
	}
	fmt.Printf("Download URL for bob: %s\n", url)

	results, err := session.Search(ctx, "report")
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}
	fmt.Printf("Search for \"report\" matched %d item(s)\n", len(results))

	if _, err := session.Trash(ctx, file.ID); err != nil {
		log.Fatalf("Failed to trash file: %v", err)
	}
	usage, err := session.Usage(ctx)
	if err != nil {
		log.Fatalf("Failed to read usage: %v", err)
	}
	fmt.Printf("Usage after trash: %s of %s (%s plan)\n",
		humanize.IBytes(uint64(usage.TotalUsage)), humanize.IBytes(uint64(usage.Limit)), usage.Plan)

	if _, err := session.Restore(ctx, file.ID); err != nil {
		log.Fatalf("Failed to restore file: %v", err)
	}
	fmt.Println("\nAlice's tree:")
	err = fs.WalkDir(session.FS(ctx), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == "." {
			return err
		}
		fmt.Printf("  %s\n", path)
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to walk tree: %v", err)
	}

	count, err := nimbus.NodeCount(ctx, alice.ID)
	if err != nil {
		log.Fatalf("Failed to count nodes: %v", err)
	}
	fmt.Printf("Alice owns %d node(s)\n", count)

	fmt.Println("\nNimbus SDK demo completed successfully!")
	fmt.Println("\nTo start the API server, run:")
	fmt.Println("  go run cmd/api/main.go")
}
