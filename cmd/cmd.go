// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with email and password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "remember",
						Usage: "Keep the session across restarts",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "remember",
						Usage: "Keep the session across restarts",
					},
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Destroy the local session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the current session state",
				Action: r.AuthStatus,
			},
		},
	}
}

// catalogCommand handles catalog lookups and downloads
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "catalog",
		Aliases: []string{"cat"},
		Usage:   "Catalog operations",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show metadata for a book",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.CatalogShow,
			},
			{
				Name:  "download",
				Usage: "Download a book to a local file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: r.CatalogDownload,
			},
		},
	}
}

// shelfCommand shows reading progress across books
func shelfCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "shelf",
		Usage: "Show reading progress for your books",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "local",
				Usage: "Read from the local snapshot cache only",
			},
		},
		Action: r.Shelf,
	}
}

// notesCommand handles note operations
func notesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "notes",
		Usage: "Page note operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List notes for a book",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "book"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.NotesList,
			},
		},
	}
}

// readCommand opens the interactive reader
func readCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "read",
		Usage: "Open a book in the terminal reader",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "page",
				Aliases: []string{"p"},
				Usage:   "Open at a specific page instead of the saved position",
			},
			&cli.StringFlag{
				Name:  "source",
				Usage: "Read from an explicit document URL or file",
			},
			&cli.BoolFlag{
				Name:  "single",
				Usage: "Start in single-page mode",
			},
			&cli.BoolFlag{
				Name:  "no-alt-screen",
				Usage: "Render inline instead of taking over the terminal",
			},
		},
		Action: r.Read,
		Commands: []*cli.Command{
			{
				Name:  "export",
				Usage: "Export rendered pages as PNG",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "page",
						Aliases: []string{"p"},
						Usage:   "First page to export",
						Value:   1,
					},
					&cli.IntFlag{
						Name:  "to",
						Usage: "Last page to export (defaults to --page)",
					},
					&cli.FloatFlag{
						Name:  "zoom",
						Usage: "Zoom scale between 0.5 and 2.5",
						Value: 1.0,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output PNG path",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Read from an explicit document URL or file",
					},
				},
				Action: r.ReadExport,
			},
		},
	}
}
