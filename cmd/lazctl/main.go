package main

import (
	"os"

	"github.com/danmuck/lazctl/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
