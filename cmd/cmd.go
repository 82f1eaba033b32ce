// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
		},
	}
}

func updateFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "status",
			Aliases: []string{"s"},
			Usage:   "PLANNED, WATCHING, FINISHED, HOLD or DROPPED",
		},
		&cli.FloatFlag{
			Name:    "rating",
			Aliases: []string{"r"},
			Usage:   "Rating out of 10",
		},
		&cli.StringFlag{
			Name:  "thoughts",
			Usage: "Thoughts on the entry; an empty value removes them",
		},
	}
}

// setupCommand handles first run configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and initialize client storage",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles the session credential.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authentication commands",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in with a username and password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "username",
						Aliases: []string{"u"},
						Usage:   "Account username (prompted when empty)",
					},
					&cli.BoolFlag{
						Name:  "jellyfin",
						Usage: "Log in with Jellyfin credentials",
					},
					&cli.BoolFlag{
						Name:  "register",
						Usage: "Create the account first",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Clear the stored credential and client state",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the stored credential and available login methods",
				Flags:  outputFlags(),
				Action: r.AuthStatus,
			},
			{
				Name:   "plex",
				Usage:  "Log in through plex.tv in the browser",
				Action: r.AuthPlex,
			},
			{
				Name:   "password",
				Usage:  "Change the account password",
				Action: r.AuthPassword,
			},
			{
				Name:  "import",
				Usage: "Import a session from a request copied as cURL from the browser",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command as a string",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to a file containing the cURL command",
					},
				},
				Action: r.AuthImport,
			},
		},
	}
}

// watchedCommand handles movie and show entries.
func watchedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "watched",
		Aliases: []string{"w"},
		Usage:   "Watched list operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List watched entries using the saved sort and filters",
				Flags: append(outputFlags(),
					&cli.BoolFlag{
						Name:    "all",
						Aliases: []string{"a"},
						Usage:   "Ignore the saved filters",
					},
				),
				Action: r.WatchedList,
			},
			{
				Name:  "add",
				Usage: "Add a movie or show, or update it when already on the list",
				Flags: append(updateFlags(),
					&cli.IntFlag{
						Name:     "tmdb",
						Usage:    "TMDB id",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "movie or tv",
						Value:   "movie",
					},
				),
				Action: r.WatchedAdd,
			},
			{
				Name:      "update",
				Usage:     "Update a watched entry by id",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     updateFlags(),
				Action:    r.WatchedUpdate,
			},
			{
				Name:      "rm",
				Usage:     "Remove a watched entry by id",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.WatchedRemove,
			},
			{
				Name:  "bulk",
				Usage: "Apply the same update to several entries",
				Flags: append(updateFlags(),
					&cli.StringSliceFlag{
						Name:     "id",
						Usage:    "Entry id (repeatable)",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent requests",
						Value: 4,
					},
				),
				Action: r.WatchedBulk,
			},
			{
				Name:  "export",
				Usage: "Export the watched list",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "json, csv, md or txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
					&cli.BoolFlag{
						Name:  "offline",
						Usage: "Export the last saved snapshot without contacting the server",
					},
				},
				Action: r.WatchedExport,
			},
			{
				Name:   "stats",
				Usage:  "Summarize the watched list",
				Flags:  outputFlags(),
				Action: r.WatchedStats,
			},
		},
	}
}

// playedCommand handles game entries.
func playedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "played",
		Usage: "Played list operations",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a game, or update it when already on the list",
				Flags: append(updateFlags(),
					&cli.IntFlag{
						Name:     "igdb",
						Usage:    "IGDB id",
						Required: true,
					},
				),
				Action: r.PlayedAdd,
			},
		},
	}
}

// activityCommand handles activity history.
func activityCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "activity",
		Usage: "Activity history operations",
		Commands: []*cli.Command{
			{
				Name:  "date",
				Usage: "Set the date an activity happened",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "watched-id"},
					&cli.StringArg{Name: "activity-id"},
					&cli.StringArg{Name: "date"},
				},
				Action: r.ActivityDate,
			},
			{
				Name:  "rm",
				Usage: "Delete an activity",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "watched-id"},
					&cli.StringArg{Name: "activity-id"},
				},
				Action: r.ActivityRemove,
			},
		},
	}
}

// tagCommand handles entry tags.
func tagCommand(r *Runner) *cli.Command {
	tagFlags := []cli.Flag{
		&cli.IntFlag{
			Name:     "tag",
			Usage:    "Tag id",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "name",
			Usage: "Tag name",
		},
	}
	return &cli.Command{
		Name:  "tag",
		Usage: "Tag operations",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Tag a watched entry",
				Arguments: []cli.Argument{&cli.StringArg{Name: "watched-id"}},
				Flags:     tagFlags,
				Action:    r.TagAdd,
			},
			{
				Name:      "rm",
				Usage:     "Untag a watched entry",
				Arguments: []cli.Argument{&cli.StringArg{Name: "watched-id"}},
				Flags:     tagFlags,
				Action:    r.TagRemove,
			},
		},
	}
}

// followCommand handles follows.
func followCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "follow",
		Usage: "Follow operations",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List followed users",
				Flags:  outputFlags(),
				Action: r.FollowList,
			},
			{
				Name:      "add",
				Usage:     "Follow a user",
				Arguments: []cli.Argument{&cli.StringArg{Name: "user-id"}},
				Action:    r.FollowAdd,
			},
			{
				Name:      "rm",
				Usage:     "Unfollow a user",
				Arguments: []cli.Argument{&cli.StringArg{Name: "user-id"}},
				Action:    r.FollowRemove,
			},
		},
	}
}

// prefsCommand handles local UI preferences.
func prefsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "prefs",
		Usage: "Local preferences",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show every preference",
				Flags:  outputFlags(),
				Action: r.PrefsShow,
			},
			{
				Name:      "theme",
				Usage:     "Set the theme (light or dark); no value resets it",
				Arguments: []cli.Argument{&cli.StringArg{Name: "theme"}},
				Action:    r.PrefsTheme,
			},
			{
				Name:  "sort",
				Usage: "Set the list sort; no value resets it",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "mode"},
					&cli.StringArg{Name: "direction", Value: "DOWN"},
				},
				Action: r.PrefsSort,
			},
			{
				Name:  "filter",
				Usage: "Set the list filters; no flags clears them",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "type",
						Usage: "movie, tv or game (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "status",
						Usage: "Watched status (repeatable)",
					},
				},
				Action: r.PrefsFilter,
			},
			{
				Name:  "detailed",
				Usage: "Turn a detailed view on or off",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "view"},
					&cli.StringArg{Name: "state", Value: "on"},
				},
				Action: r.PrefsDetailed,
			},
		},
	}
}

// settingsCommand handles server-side account settings.
func settingsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Account settings stored on the server",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show account settings",
				Flags:  outputFlags(),
				Action: r.SettingsShow,
			},
			{
				Name:  "set",
				Usage: "Change one setting; the value is parsed as JSON when possible",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
					&cli.StringArg{Name: "value"},
				},
				Action: r.SettingsSet,
			},
		},
	}
}

func featuresCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "features",
		Usage:  "Show which optional server features are enabled",
		Flags:  outputFlags(),
		Action: r.Features,
	}
}

func jellyfinCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "jellyfin",
		Usage: "Jellyfin library lookups",
		Commands: []*cli.Command{
			{
				Name:  "find",
				Usage: "Check whether content exists on the linked Jellyfin server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Content title",
						Required: true,
					},
					&cli.IntFlag{
						Name:     "tmdb",
						Usage:    "TMDB id",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "movie or tv",
						Value:   "movie",
					},
				},
				Action: r.JellyfinFind,
			},
		},
	}
}
