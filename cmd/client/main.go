package main

import (
	"context"
	"errors"
	"flag"
	"image"
	"os"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/reversi-lobby/internal/board"
	"github.com/vancomm/reversi-lobby/internal/config"
	"github.com/vancomm/reversi-lobby/internal/lobby"
	"github.com/vancomm/reversi-lobby/internal/session"
	"github.com/vancomm/reversi-lobby/internal/store"
	"github.com/vancomm/reversi-lobby/internal/surface"
)

var (
	log = logrus.New()

	configPath string
	rejoin     bool
	forget     bool
)

func init() {
	const usage = "config file path"
	flag.StringVar(&configPath, "config", "", usage)
	flag.StringVar(&configPath, "c", "", usage+" (shorthand)")
	flag.BoolVar(&rejoin, "rejoin", false, "rejoin the last room on connect")
	flag.BoolVar(&forget, "forget", false, "drop the saved name and room before starting")
}

func main() {
	mainCtx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if log, err = config.NewLogger(cfg); err != nil {
		logrus.Fatal(err)
	}

	log.Info("starting up, mode = ", cfg.Mode)
	log.WithFields(cfg.Fields()).Debug("config")

	db, err := store.Open(cfg.StorePath)
	if err != nil {
		log.Fatal("unable to open profile store: ", err)
	}
	defer db.Close()
	kv, err := store.New(db, "client")
	if err != nil {
		log.Fatal("unable to create profile store: ", err)
	}
	if forget {
		if err := store.ForgetProfile(kv); err != nil {
			log.Fatal("unable to forget profile: ", err)
		}
		log.Info("saved profile dropped")
	}
	profile, err := store.LoadProfile(kv)
	if err != nil {
		log.Warn("profile not loaded: ", err)
	}

	name := cfg.Name
	if name == "" {
		name = profile.Name
	}

	bridge := session.NewBridge(64, log)
	host := surface.NewHost(boardBounds(cfg))
	defer host.Release()

	lb := lobby.New(bridge, lobby.Options{
		Host: host,
		Cols: cfg.Board.Cols,
		Rows: cfg.Board.Rows,
		NewBoard: func() lobby.Board {
			return board.NewController(board.DefaultTheme(), log)
		},
		OnChange: func(v lobby.View) {
			p := store.Profile{Name: v.Name}
			if v.Room != lobby.MainRoom {
				p.LastRoom = v.Room
			}
			if err := store.SaveProfile(kv, p); err != nil {
				log.WithError(err).Warn("profile not saved")
			}
		},
	}, log)
	defer lb.Stop()

	ctx, cancel := context.WithCancel(mainCtx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		conn, err := session.Dial(gCtx, cfg.Dialer(), cfg.ServerURL, bridge, log)
		if err != nil {
			return err
		}
		if err := lb.Start(name); err != nil {
			return err
		}
		if rejoin && profile.LastRoom != "" {
			if err := lb.Join(profile.LastRoom); err != nil {
				log.WithError(err).Warn("rejoin failed")
			}
		}
		return conn.Run(gCtx)
	})

	game := newGame(gCtx, cfg, lb, host, bridge, log)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Error("window: ", err)
	}
	cancel()

	if err := g.Wait(); err != nil {
		log.Printf("exit reason: %s\n", err)
	}
}

// boardBounds places the square board at the window's top-left corner,
// below the status line.
func boardBounds(cfg *config.Config) image.Rectangle {
	return image.Rect(0, statusHeight, cfg.Board.Size, statusHeight+cfg.Board.Size)
}
