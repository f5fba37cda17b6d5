package main

import (
	"os"

	"github.com/lydakis/mcpchat/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
