package main

import (
	"os"

	"github.com/serenespa/admin-console/internal/cli"
	"github.com/serenespa/admin-console/pkg/logger"
)

func main() {
	if err := cli.Execute(); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
