package main

import (
	"github.com/replayhq/scoreserver/internal/cli"
)

func main() {
	cli.Execute()
}
