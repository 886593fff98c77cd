package main

import (
	"context"
	"os"

	"github.com/s1natex/todos-api-GO/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
