// Command smokegen generates smoke services from Swagger/OpenAPI models.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/mark3labs/smokegen/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		stop()
		os.Exit(1)
	}
}
