package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/dotpop-game/dotpop/internal/audio"
	"github.com/dotpop-game/dotpop/internal/config"
	"github.com/dotpop-game/dotpop/internal/loop"
)

func main() {
	configPath := flag.String("config", config.GetEnv("DOTPOP_CONFIG", "dotpop.toml"), "path to TOML config")
	noAudio := flag.Bool("no-audio", false, "disable sound output")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("config", "err", err)
	}

	var player *audio.Player
	var synth audio.Synthesizer
	if cfg.Audio.Enabled && !*noAudio {
		player = audio.NewPlayer()
		if err := player.Init(); err != nil {
			logger.Warn("audio unavailable, continuing silent", "err", err)
			player = nil
		} else {
			defer player.Close()
			synth = &audio.ToneSynth{}
		}
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	reader := bufio.NewReader(os.Stdin)
	opts := loop.Options{
		Config: cfg,
		Logger: logger,
		Player: player,
		Synth:  synth,
	}
	if err := loop.Run(reader, os.Stdout, opts); err != nil {
		_ = term.Restore(fd, oldState)
		logger.Fatal("game", "err", err)
	}
}
