package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"simple-todo/internal/cli"
	"simple-todo/pkg/client"
)

func main() {
	opts, err := cli.ParseOptions(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := client.New(opts.Server, client.NewFileTokenStore(opts.Session))
	app := cli.NewApp(c, os.Stdin, os.Stdout)

	if err := app.Run(ctx, opts.Command, opts.Args); err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrorStyle.Render("error: ")+err.Error())
		stop()
		os.Exit(1)
	}
}
