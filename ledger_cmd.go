package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"smpverify/ledger"
	"smpverify/model"
)

func ledgerCommand() *cli.Command {
	return &cli.Command{
		Name:  "ledger",
		Usage: "inspect and maintain the verified users ledger",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "record a user as verified now",
				ArgsUsage: "<user_id> [username]",
				Action: withLedger(func(c *cli.Context, l *ledger.Ledger) error {
					userID := c.Args().First()
					if userID == "" {
						return errors.New("user_id is required")
					}
					existed := l.Contains(c.Context, userID)
					l.Upsert(c.Context, userID, c.Args().Get(1))

					user, ok := l.Get(c.Context, userID)
					if !ok {
						return fmt.Errorf("user %s was not stored", userID)
					}
					if existed {
						fmt.Fprintf(c.App.Writer, "Updated %s (first verified %s)\n", userID, model.FormatTime(user.FirstVerified))
					} else {
						fmt.Fprintf(c.App.Writer, "Added %s\n", userID)
					}
					return nil
				}),
			},
			{
				Name:      "show",
				Usage:     "print one entry",
				ArgsUsage: "<user_id>",
				Action: withLedger(func(c *cli.Context, l *ledger.Ledger) error {
					userID := c.Args().First()
					user, ok := l.Get(c.Context, userID)
					if !ok {
						return fmt.Errorf("user %s is not in the ledger", userID)
					}
					return writeJSON(c, model.LedgerFile{user.UserID: *user})
				}),
			},
			{
				Name:  "list",
				Usage: "print every entry as a table",
				Action: withLedger(func(c *cli.Context, l *ledger.Ledger) error {
					users, err := l.All(c.Context)
					if err != nil {
						return err
					}
					w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "USER ID\tUSERNAME\tFIRST VERIFIED\tLAST VERIFIED")
					for _, u := range users {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.UserID, u.Username,
							u.FirstVerified.Format("2006-01-02"), u.LastVerified.Format("2006-01-02"))
					}
					return w.Flush()
				}),
			},
			{
				Name:      "import",
				Usage:     "merge a verified_users.json file into the ledger",
				ArgsUsage: "<file.json>",
				Action: withLedger(func(c *cli.Context, l *ledger.Ledger) error {
					path := c.Args().First()
					if path == "" {
						return errors.New("file is required")
					}
					data, err := os.ReadFile(path)
					if err != nil {
						return err
					}
					var file model.LedgerFile
					if err := json.Unmarshal(data, &file); err != nil {
						return fmt.Errorf("parse %s: %w", path, err)
					}

					users := make([]model.VerifiedUser, 0, len(file))
					for _, u := range file {
						users = append(users, u)
					}
					n, err := l.Import(c.Context, users)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "Imported %d entries\n", n)
					return nil
				}),
			},
			{
				Name:  "export",
				Usage: "print the whole ledger as verified_users.json",
				Action: withLedger(func(c *cli.Context, l *ledger.Ledger) error {
					users, err := l.All(c.Context)
					if err != nil {
						return err
					}
					file := make(model.LedgerFile, len(users))
					for _, u := range users {
						file[u.UserID] = u
					}
					return writeJSON(c, file)
				}),
			},
		},
	}
}

func withLedger(fn func(c *cli.Context, l *ledger.Ledger) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, logger, err := setup(c)
		if err != nil {
			return err
		}
		l, err := ledger.Open(c.Context, cfg.Ledger, logger)
		if err != nil {
			return err
		}
		defer l.Close()
		return fn(c, l)
	}
}

func writeJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
