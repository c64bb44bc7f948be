package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/maheshrc27/postsheet/pkg/client"
)

var (
	apiURL    string
	secret    string
	statePath string
)

var rootCmd = &cobra.Command{
	Use:   "schedulectl",
	Short: "Schedule social media posts against a postsheet server",
	Long: `schedulectl drives the schedule API from a terminal.

Local state (optimistic post list, platform connections, pending draft)
is kept in a TOML file so consecutive invocations share it.`,
	SilenceUsage: true,
}

func init() {
	_ = godotenv.Load()

	home, _ := os.UserHomeDir()
	defaultState := filepath.Join(home, ".config", "postsheet", "state.toml")

	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("POSTSHEET_API", "http://127.0.0.1:3001"), "schedule API base URL")
	rootCmd.PersistentFlags().StringVar(&secret, "secret", os.Getenv("SCHEDULE_SECRET"), "value sent as x-schedule-secret")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", envOr("POSTSHEET_STATE", defaultState), "path to the local state file")

	rootCmd.AddCommand(scheduleCmd, listCmd, deleteCmd, statusCmd, historyCmd, connectCmd, connectionsCmd, draftCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newAPIClient() (*client.APIClient, error) {
	return client.NewAPIClient(apiURL, secret)
}

func newFacade() (*client.Facade, error) {
	api, err := newAPIClient()
	if err != nil {
		return nil, err
	}
	return client.NewFacade(statePath, api), nil
}
