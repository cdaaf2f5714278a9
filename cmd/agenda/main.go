package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"agenda/internal/config"
	"agenda/internal/prefs"
	"agenda/internal/repository"
	"agenda/internal/storage"
	"agenda/internal/ui"
)

func main() {
	// .env is optional; AGENDA_* variables may come from the shell instead.
	_ = godotenv.Load()

	configPath := config.ResolveConfigPath()
	firstLaunch := false
	if _, err := os.Stat(configPath); err != nil {
		firstLaunch = errors.Is(err, os.ErrNotExist)
	}
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}
	config.ApplyEnv(&cfg)

	if cfg.LogPath != "" {
		f, err := tea.LogToFile(cfg.LogPath, "agenda")
		if err != nil {
			fmt.Printf("failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	store, err := storage.Open(cfg.DBPath, storage.Options{Debug: cfg.DBDebug})
	if err != nil {
		fmt.Printf("failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()
	log.Printf("[main] config %s, database %s", configPath, cfg.DBPath)

	holder := prefs.New(cfg.Theme.Prefs(), config.ThemeSaver(configPath))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ui.Run(ctx, repository.New(store), holder, cfg, configPath, firstLaunch); err != nil {
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
}
