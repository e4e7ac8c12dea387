package main

import (
	"os"

	"github.com/spf13/cobra"

	"clinica/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinica",
		Short: "Clinica session service",
		Long:  `Clinica session lifecycle service: issues, validates and revokes authenticated sessions for the clinic platform.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
