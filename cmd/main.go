// Package main is the entry point for the jamclip player.
//
// jamclip plays a local audio file and lets the user cut clips from it through an
// interactive command loop on stdin.
//
// Build:
//
//	go build -o build/jamclip ./cmd
//
// Run:
//
//	./build/jamclip play ~/Music/set.mp3
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	"github.com/tejashwikalptaru/jamclip/internal/app"
	"github.com/tejashwikalptaru/jamclip/internal/config"
	"github.com/tejashwikalptaru/jamclip/internal/logger"
)

var (
	cli        = kingpin.New("jamclip", "Audio player with a clip editor")
	configPath = cli.Flag("config", "Path to config file").Envar("JAMCLIP_CONFIG").String()
	verbose    = cli.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	useMock    = cli.Flag("mock", "Use the mock audio backend").Bool()

	playCmd  = cli.Command("play", "Play an audio file and edit clips interactively")
	playFile = playCmd.Arg("file", "Audio file to play").Required().ExistingFile()

	scanCmd = cli.Command("scan", "List the playable tracks in a folder")
	scanDir = scanCmd.Arg("dir", "Folder to scan").Required().ExistingDir()

	versionCmd = cli.Command("version", "Print version information")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(cli.Parse(os.Args[1:]))

	if command == versionCmd.FullCommand() {
		fmt.Println(app.GetVersionInfo().FullString())
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *useMock {
		cfg.Backend.Kind = config.BackendMock
	}

	logCfg := cfg.Logger()
	if *verbose {
		logCfg.Level = slog.LevelDebug
	}
	log := logger.NewLogger(logCfg)

	if err := run(command, cfg, log); err != nil {
		log.Error("jamclip failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// run executes the selected command. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(command string, cfg *config.Config, log *slog.Logger) error {
	session, err := app.NewSession(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case scanCmd.FullCommand():
		tracks, err := session.Library().ScanFolder(ctx, *scanDir)
		if err != nil {
			return err
		}
		for _, track := range tracks {
			fmt.Printf("%s\t%s\n", track.Title, track.URL)
		}
		return nil

	case playCmd.FullCommand():
		if _, err := session.OpenFile(*playFile); err != nil {
			return err
		}
		return newREPL(session, os.Stdin, os.Stdout).Run(ctx)
	}
	return nil
}
