package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/foampro/foamsync/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	prefsPath := flag.String("prefs", "", "override prefs path (optional)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Println("foamsync", app.Version)
		return 0
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{ConfigPath: *configPath, PrefsPath: *prefsPath}

	args := flag.Args()
	if len(args) == 0 {
		if err := app.Run(ctx, opts); err != nil {
			fmt.Fprintf(os.Stderr, "foamsync: %v\n", err)
			return 1
		}
		return 0
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "foamsync: unknown command %q\n\n", args[0])
		usage()
		return 2
	}
	if err := cmd.run(ctx, opts, args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "foamsync %s: %v\n", args[0], err)
		return 1
	}
	return 0
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: foamsync [flags] [command] [args]\n\n")
	fmt.Fprintf(out, "With no command the dashboard starts.\n\nCommands:\n")
	for _, name := range commandOrder {
		fmt.Fprintf(out, "  %-11s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(out, "\nFlags:\n")
	flag.PrintDefaults()
}
