package main

import (
	"os"

	"github.com/mergevet/mergevet/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
