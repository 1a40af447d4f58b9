// Command server runs the task manager HTTP API.
//
// Usage:
//
//	server serve     start the HTTP server (default)
//	                 --in-memory runs without MongoDB and Redis
//	server indexes   create MongoDB indexes and exit
//
// Configuration is read from the environment; see internal/pkg/config.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const serviceName = "task-api"

var rootCmd = &cobra.Command{
	Use:           "server",
	Short:         "Task manager HTTP API",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	for _, cmd := range []*cobra.Command{rootCmd, serveCmd} {
		cmd.Flags().BoolVar(&inMemory, "in-memory", false, "keep all data in process memory instead of MongoDB and Redis")
	}
	rootCmd.AddCommand(serveCmd, indexesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
