// Command domino is the scoring desk's command line: it manages the roster, seats rounds,
// records table results and exports the printed sheets against the same store the API
// server uses.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/trentd187/domino-tournament/internal/config"
	"github.com/trentd187/domino-tournament/internal/database"
	"github.com/trentd187/domino-tournament/internal/logging"
	"github.com/trentd187/domino-tournament/internal/store"
	"github.com/trentd187/domino-tournament/internal/tournament"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "domino",
		Usage: "run a domino round-robin tournament from the scoring desk",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "db",
				Usage: "SQLite store path (overrides TORNEO_DB_PATH)",
			},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			seedCommand(),
			playersCommand(),
			roundCommand(),
			scoreCommand(),
			adjustCommand(),
			rankingCommand(),
			exportCommand(),
			tokenCommand(),
		},
	}
}

// loadConfig reads configuration and applies global flags. CLI logs go to stderr so
// command output stays clean.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
		cfg.DatabaseURL = ""
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console", Output: os.Stderr})
	return cfg, nil
}

// session is an open store plus the service built on it.
type session struct {
	cfg *config.Config
	db  *gorm.DB
	svc *tournament.Service
}

func openSession(c *cli.Context) (*session, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	db, err := database.Open(database.TargetFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	svc := tournament.New(store.New(db), tournament.Options{
		MaxPlayers: cfg.MaxPlayers,
		MaxRounds:  cfg.MaxRounds,
		WinWeight:  cfg.WinWeight,
	})
	return &session{cfg: cfg, db: db, svc: svc}, nil
}

func (s *session) Close() {
	if err := database.Close(s.db); err != nil {
		logging.Logger().Warn().Err(err).Msg("failed to close store")
	}
}

// withSession opens the store for the duration of action.
func withSession(action func(c *cli.Context, s *session) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		s, err := openSession(c)
		if err != nil {
			return err
		}
		defer s.Close()
		return action(c, s)
	}
}
