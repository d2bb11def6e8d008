package main

import (
	"context"

	"github.com/dmorgan81/emotegen/internal/cli"
)

func main() {
	cli.Execute(context.Background())
}
