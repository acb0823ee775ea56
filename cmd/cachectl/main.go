package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"destinex/services"
)

func main() {
	rootCommand := cobra.Command{
		Use:           "cachectl",
		Short:         "Administer the destinex city cache",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCommand.AddCommand(newClearCommand())

	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to execute a command: %+v\n", err)
		os.Exit(1)
	}
}

func newClearCommand() *cobra.Command {
	var city string
	command := &cobra.Command{
		Use:   "clear",
		Short: "Clear cached search results for one city, or all cities",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			mongoURI := os.Getenv("MONGODB_URI")
			if mongoURI == "" {
				mongoURI = "mongodb://localhost:27017"
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			cacheService, err := services.NewCacheService(ctx, mongoURI)
			if err != nil {
				return err
			}
			defer func() {
				_ = cacheService.Close(context.Background())
			}()

			deleted, err := cacheService.ClearCache(ctx, city)
			if err != nil {
				return err
			}

			if city != "" {
				fmt.Printf("Cleared cache for %q: %d entries\n", city, deleted)
			} else {
				fmt.Printf("Cleared all cache: %d entries\n", deleted)
			}
			return nil
		},
	}
	command.Flags().StringVar(&city, "city", "", "city to clear; clears every city when omitted")
	return command
}
