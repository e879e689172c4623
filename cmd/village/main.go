package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/smasonuk/village3d"
	"github.com/smasonuk/village3d/view"
)

var (
	levelFlag   logLevelFlag
	configFlag  = flag.String("config", "", "path to a YAML config file")
	assetFlag   = flag.String("asset", "", "asset to load (.glb, .gltf or .yaml layout), overrides the config")
	modeFlag    = flag.String("mode", "", "resolve mode: direct or derived, overrides the config")
	watchFlag   = flag.Bool("watch", false, "reload the asset when it changes on disk")
	logFileFlag = flag.String("logfile", "", "write logs to this file instead of the console")
)

func init() {
	levelFlag.value = slog.LevelInfo
	flag.Var(&levelFlag, "loglevel", "set log level")
}

func main() {
	flag.Parse()
	slog.SetLogLoggerLevel(levelFlag.value)
	if *logFileFlag != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   *logFileFlag,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
		})
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}

	game, err := view.NewGame(context.Background(), cfg, village3d.NewExtensionLoader())
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}

func loadConfig() (village3d.Config, error) {
	cfg := village3d.DefaultConfig()
	if *configFlag != "" {
		var err error
		cfg, err = village3d.LoadConfig(*configFlag)
		if err != nil {
			return cfg, err
		}
	}
	if *assetFlag != "" {
		cfg.Asset.Path = *assetFlag
	}
	if *modeFlag != "" {
		cfg.Resolver.Mode = *modeFlag
	}
	if *watchFlag {
		cfg.Asset.Watch = true
	}
	if _, err := os.Stat(cfg.Asset.Path); err != nil {
		slog.Warn("Asset not found, the scene will stay empty", "path", cfg.Asset.Path)
	}
	return cfg, cfg.Validate()
}
