package main

import (
	"flag"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/torchlab/ember/config"
	"github.com/torchlab/ember/ecs"
	"github.com/torchlab/ember/ecs/component"
	"github.com/torchlab/ember/ecs/system"
	"github.com/torchlab/ember/input"
	"github.com/torchlab/ember/paths"
	"github.com/torchlab/ember/prefabs"
	"github.com/torchlab/ember/res"
	"github.com/torchlab/ember/xlog"
)

func main() {
	configPath := flag.String("config", "ember.yaml", "engine config file")
	debug := flag.Bool("debug", false, "debug overlay, verbose logging, forced-crash chord")
	level := flag.String("level", "", "level to load instead of the configured start level")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		xlog.New(true).Fatal("load config", zap.Error(err))
	}
	if *debug {
		cfg.Engine.Debug = true
	}
	if *level != "" {
		cfg.Engine.StartLevel = *level
	}

	log := xlog.New(cfg.Engine.Debug)
	defer func() { _ = log.Sync() }()
	crash := xlog.NewCrashLogger(log)
	guard := &xlog.Guard{Log: log, Crash: crash, Terminate: !cfg.Engine.Debug}

	roots := paths.Discover()
	log.Info("roots", zap.String("assets", roots.Assets), zap.String("data", roots.Data))

	cache := res.NewCache(log, &res.DiskTextures{Roots: roots}, &res.DiskSounds{Roots: roots})
	bank := newSoundBank(log, cache, cfg.Audio.Volume)

	component.RegisterBuiltins()
	fac := ecs.NewFactory(log, ecs.Options{
		ObjectsPerPage: cfg.Allocator.ObjectsPerPage,
		MaxPages:       cfg.Allocator.MaxPages,
	})

	prefabDir := roots.ResolveData(cfg.Dirs.Prefabs)
	if err := fac.LoadPrefabDir(prefabDir); err != nil {
		log.Fatal("load prefabs", zap.String("dir", prefabDir), zap.Error(err))
	}

	var watcher *prefabs.Watcher
	if cfg.Engine.WatchPrefabs {
		watcher, err = prefabs.NewWatcher(prefabDir)
		if err != nil {
			log.Warn("prefab watcher disabled", zap.Error(err))
		} else {
			defer func() { _ = watcher.Close() }()
		}
	}

	hits, err := system.NewHitBoxSystem(log, fac, bank, "impact")
	if err != nil {
		log.Fatal("hit box system", zap.Error(err))
	}
	phys := system.NewPhysicsSystem(fac)
	anims := system.NewAnimationSystem(fac, cache)
	trees := system.NewDTreeSystem(log, fac, hits, phys)
	trees.ResolveScript = func(name string) string {
		return filepath.Join(prefabDir, name)
	}
	parts := system.NewParticleSystem(log, fac)
	hits.Particles = parts
	gameplay := system.NewGameplay(log, fac, hits, trees, anims, parts, crash, cfg.Engine.Debug)

	levelDir := roots.ResolveData(cfg.Dirs.Levels)
	gameplay.ResolveLevel = func(name string) string {
		if !strings.Contains(name, ".") {
			name += ".json"
		}
		return filepath.Join(levelDir, name)
	}

	startLevel := gameplay.ResolveLevel(cfg.Engine.StartLevel)
	if _, err := fac.CreateLevel(startLevel); err != nil {
		log.Fatal("load level", zap.String("path", startLevel), zap.Error(err))
	}

	camera := NewCamera(cfg.Window.Width, cfg.Window.Height)
	game := &Game{
		cfg:      cfg,
		log:      log,
		guard:    guard,
		roots:    roots,
		fac:      fac,
		cache:    cache,
		bank:     bank,
		poller:   input.NewPoller(camera),
		camera:   camera,
		gameplay: gameplay,
		physics:  phys,
		watcher:  watcher,
	}

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	if err := ebiten.RunGame(game); err != nil {
		crash.Record("run", err)
		log.Fatal("run", zap.Error(err))
	}
}
