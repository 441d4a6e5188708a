package main

import (
	"context"
	"os"
	"os/signal"

	"example.com/cluedo-mansion/internal/cli"

	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, ForceColors: true})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand(log).ExecuteContext(ctx); err != nil {
		log.Errorf("Application exited with error: %v", err)
		stop()
		os.Exit(1)
	}
}
