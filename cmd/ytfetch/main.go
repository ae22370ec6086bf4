package main

import (
	"os"

	"github.com/ytget/ytfetch/internal/cli"
)

var version = "dev"

func main() {
	os.Exit(cli.Execute(version))
}
