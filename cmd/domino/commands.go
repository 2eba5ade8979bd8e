package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/trentd187/domino-tournament/internal/database"
	"github.com/trentd187/domino-tournament/internal/middleware"
	"github.com/trentd187/domino-tournament/internal/models"
	"github.com/trentd187/domino-tournament/internal/report"
	"github.com/trentd187/domino-tournament/internal/tournament"
)

func roundFlag() cli.Flag {
	return &cli.IntFlag{Name: "round", Aliases: []string{"r"}, Usage: "round number", Required: true}
}

func tableFlag() cli.Flag {
	return &cli.IntFlag{Name: "table", Aliases: []string{"t"}, Usage: "table number", Required: true}
}

func outFlag() cli.Flag {
	return &cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file"}
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create or upgrade the store schema",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			target := database.TargetFromConfig(cfg)
			if err := database.RunMigrations(target); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "store migrated: %s\n", target.Describe())
			return nil
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "register demo players into an empty roster",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "count", Value: 100, Usage: "players to register"},
			&cli.Uint64Flag{Name: "seed", Usage: "fake data seed (0 picks one from the clock)"},
			&cli.BoolFlag{Name: "force", Usage: "seed even when the roster is not empty"},
		},
		Action: withSession(func(c *cli.Context, s *session) error {
			n, err := s.svc.PlayerCount(c.Context)
			if err != nil {
				return err
			}
			if n > 0 && !c.Bool("force") {
				fmt.Fprintf(c.App.Writer, "roster already has %d players, nothing seeded\n", n)
				return nil
			}

			seed := c.Uint64("seed")
			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}
			added := 0
			for _, in := range demoPlayers(c.Int("count"), seed) {
				if _, err := s.svc.Register(c.Context, in); err != nil {
					if tournament.KindOf(err) == tournament.KindConflict {
						fmt.Fprintf(c.App.Writer, "stopped: %v\n", err)
						break
					}
					return err
				}
				added++
			}
			fmt.Fprintf(c.App.Writer, "registered %d demo players\n", added)
			return nil
		}),
	}
}

func playersCommand() *cli.Command {
	return &cli.Command{
		Name:  "players",
		Usage: "manage the roster",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "register a player",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "surname", Required: true},
					&cli.StringFlag{Name: "national-id", Required: true},
					&cli.StringFlag{Name: "phone"},
					&cli.IntFlag{Name: "fee", Usage: "registration fee (default 5000)"},
				},
				Action: withSession(func(c *cli.Context, s *session) error {
					in := tournament.PlayerInput{
						Name:       c.String("name"),
						Surname:    c.String("surname"),
						NationalID: c.String("national-id"),
						Phone:      c.String("phone"),
					}
					if c.IsSet("fee") {
						fee := c.Int("fee")
						in.Fee = &fee
					}
					p, err := s.svc.Register(c.Context, in)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "registered #%d %s %s\n", p.ID, p.Name, p.Surname)
					return nil
				}),
			},
			{
				Name:  "list",
				Usage: "print the roster",
				Action: withSession(func(c *cli.Context, s *session) error {
					players, err := s.svc.ListPlayers(c.Context)
					if err != nil {
						return err
					}
					tw := table(c.App.Writer)
					fmt.Fprintln(tw, "ID\tNAME\tSURNAME\tNATIONAL ID\tPHONE\tFEE")
					for _, p := range players {
						fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Surname, p.NationalID, p.Phone, p.Fee)
					}
					return tw.Flush()
				}),
			},
		},
	}
}

func roundCommand() *cli.Command {
	return &cli.Command{
		Name:  "round",
		Usage: "seat and inspect rounds",
		Subcommands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "seat a round (round 1 shuffles the roster, later rounds split partners)",
				Flags: []cli.Flag{roundFlag()},
				Action: withSession(func(c *cli.Context, s *session) error {
					a, err := s.svc.GenerateRound(c.Context, c.Int("round"))
					if err != nil {
						return err
					}
					if len(a.Excluded) > 0 {
						fmt.Fprintf(c.App.Writer, "left out this round: %v\n", a.Excluded)
					}
					return printRound(c.Context, c.App.Writer, s.svc, a.Round)
				}),
			},
			{
				Name:  "show",
				Usage: "print the seating of a round",
				Flags: []cli.Flag{roundFlag()},
				Action: withSession(func(c *cli.Context, s *session) error {
					return printRound(c.Context, c.App.Writer, s.svc, c.Int("round"))
				}),
			},
			{
				Name:  "status",
				Usage: "print or set a table's play state",
				Flags: []cli.Flag{
					roundFlag(),
					tableFlag(),
					&cli.StringFlag{Name: "set", Usage: "in_progress or finished"},
				},
				Action: withSession(func(c *cli.Context, s *session) error {
					round, tbl := c.Int("round"), c.Int("table")
					if c.IsSet("set") {
						if err := s.svc.SetTableStatus(c.Context, round, tbl, models.TableState(c.String("set"))); err != nil {
							return err
						}
					}
					state, err := s.svc.TableStatus(c.Context, round, tbl)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "round %d table %d: %s\n", round, tbl, state)
					return nil
				}),
			},
		},
	}
}

func printRound(ctx context.Context, w io.Writer, svc *tournament.Service, round int) error {
	view, err := svc.RoundAssignment(ctx, round)
	if err != nil {
		return err
	}
	if len(view.Tables) == 0 {
		fmt.Fprintf(w, "round %d has not been seated\n", round)
		return nil
	}
	tw := table(w)
	fmt.Fprintln(tw, "TABLE\tSTATUS\tA\tB\tC\tD")
	for _, t := range view.Tables {
		fmt.Fprintf(tw, "%d\t%s", t.Number, t.Status)
		for _, seat := range t.Seats {
			fmt.Fprintf(tw, "\t#%d %s", seat.PlayerID, seat.Surname)
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(view.Unseated) > 0 {
		fmt.Fprintf(w, "unseated: %v\n", view.Unseated)
	}
	return nil
}

func scoreCommand() *cli.Command {
	return &cli.Command{
		Name:  "score",
		Usage: "record table results",
		Subcommands: []*cli.Command{
			{
				Name:  "table",
				Usage: "record the side totals of a table (AC is side 1, BD side 2)",
				Flags: []cli.Flag{
					roundFlag(),
					tableFlag(),
					&cli.IntFlag{Name: "side1", Required: true},
					&cli.IntFlag{Name: "side2", Required: true},
				},
				Action: withSession(func(c *cli.Context, s *session) error {
					res, err := s.svc.SaveTablePoints(c.Context, c.Int("round"), c.Int("table"), c.Int("side1"), c.Int("side2"))
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "round %d table %d: %d-%d, winner %s\n",
						res.Round, res.TableNo, res.PointsSide1, res.PointsSide2, res.Winner)
					return nil
				}),
			},
			{
				Name:      "players",
				Usage:     "record per-player points of a table",
				ArgsUsage: "A=BASE[/PENALTY] B=... C=... D=...",
				Flags: []cli.Flag{
					roundFlag(),
					tableFlag(),
					&cli.StringFlag{Name: "winner", Usage: "AC or BD", Required: true},
				},
				Action: withSession(func(c *cli.Context, s *session) error {
					scores, err := parseScoreArgs(c.Args().Slice())
					if err != nil {
						return err
					}
					winner := models.Partnership(strings.ToUpper(c.String("winner")))
					rows, err := s.svc.SavePlayerScores(c.Context, c.Int("round"), c.Int("table"), scores, winner)
					if err != nil {
						return err
					}
					tw := table(c.App.Writer)
					fmt.Fprintln(tw, "POS\tPLAYER\tBASE\tPENALTY\tFINAL\tWON")
					for _, r := range rows {
						fmt.Fprintf(tw, "%s\t#%d\t%d\t%d\t%d\t%t\n",
							r.Position, r.PlayerID, r.BasePoints, r.PenaltyPoints, r.FinalPoints, r.Won())
					}
					return tw.Flush()
				}),
			},
		},
	}
}

func adjustCommand() *cli.Command {
	return &cli.Command{
		Name:  "adjust",
		Usage: "add a bonus or penalty to a player's points",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "player", Aliases: []string{"p"}, Required: true},
			&cli.IntFlag{Name: "delta", Usage: "signed points, negative for a penalty", Required: true},
			&cli.StringFlag{Name: "reason"},
		},
		Action: withSession(func(c *cli.Context, s *session) error {
			adj, err := s.svc.ApplyAdjustment(c.Context, c.Int("player"), c.Int("delta"), c.String("reason"))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "player #%d adjusted by %+d\n", adj.PlayerID, adj.DeltaPoints)
			return nil
		}),
	}
}

func rankingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ranking",
		Usage: "print the standings",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "recompute", Usage: "rebuild stats before printing"},
		},
		Action: withSession(func(c *cli.Context, s *session) error {
			if c.Bool("recompute") {
				if _, err := s.svc.Recompute(c.Context); err != nil {
					return err
				}
			}
			rows, err := s.svc.Ranking(c.Context)
			if err != nil {
				return err
			}
			tw := table(c.App.Writer)
			fmt.Fprintln(tw, "R\tID\tPLAYER\tG\tP\tE")
			for _, r := range rows {
				fmt.Fprintf(tw, "%d\t%d\t%s %s\t%d\t%d\t%d\n", r.Rank, r.PlayerID, r.Name, r.Surname, r.GamesWon, r.Points, r.Effectiveness)
			}
			return tw.Flush()
		}),
	}
}

func exportCommand() *cli.Command {
	write := func(c *cli.Context, fallback string, render func(ctx context.Context, w io.Writer) error) error {
		path := c.String("out")
		if path == "" {
			path = fallback
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := render(c.Context, f); err != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "wrote %s\n", path)
		return nil
	}

	return &cli.Command{
		Name:  "export",
		Usage: "write printable workbooks",
		Subcommands: []*cli.Command{
			{
				Name:  "assignment",
				Usage: "player id to table sheet of a round",
				Flags: []cli.Flag{roundFlag(), outFlag()},
				Action: withSession(func(c *cli.Context, s *session) error {
					exp := report.NewExporter(s.svc, s.cfg.TournamentTitle)
					round := c.Int("round")
					return write(c, fmt.Sprintf("round-%d-assignment.xlsx", round), func(ctx context.Context, w io.Writer) error {
						return exp.WriteAssignment(ctx, w, round)
					})
				}),
			},
			{
				Name:  "tables",
				Usage: "one score sheet per table of a round",
				Flags: []cli.Flag{roundFlag(), outFlag()},
				Action: withSession(func(c *cli.Context, s *session) error {
					exp := report.NewExporter(s.svc, s.cfg.TournamentTitle)
					round := c.Int("round")
					return write(c, fmt.Sprintf("round-%d-tables.xlsx", round), func(ctx context.Context, w io.Writer) error {
						return exp.WriteTableSheets(ctx, w, round)
					})
				}),
			},
			{
				Name:  "ranking",
				Usage: "current standings",
				Flags: []cli.Flag{outFlag()},
				Action: withSession(func(c *cli.Context, s *session) error {
					exp := report.NewExporter(s.svc, s.cfg.TournamentTitle)
					return write(c, "ranking.xlsx", exp.WriteRanking)
				}),
			},
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "issue a bearer token for the API's write routes",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "role", Value: middleware.RoleScorer, Usage: "organizer or scorer"},
			&cli.StringFlag{Name: "subject", Value: "desk", Usage: "who the token is for"},
			&cli.DurationFlag{Name: "ttl", Value: 12 * time.Hour},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is empty; the server accepts writes without a token")
			}
			token, err := middleware.IssueToken(cfg.JWTSecret, c.String("subject"), c.String("role"), c.Duration("ttl"))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, token)
			return nil
		},
	}
}
