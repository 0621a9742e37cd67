// ABOUTME: Cobra command for interactive X account setup.
// ABOUTME: Launches a bubbletea TUI wizard to collect and validate OAuth credentials.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/riddleking/internal/config"
	"github.com/2389-research/riddleking/internal/publisher"
	"github.com/2389-research/riddleking/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Connect your X account",
	Long:  "Interactive wizard to configure the X API keys and access tokens used for posting.",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	// A named config file that does not exist yet is created on save.
	loadPath := flagConfigFile
	if _, statErr := os.Stat(loadPath); loadPath != "" && errors.Is(statErr, fs.ErrNotExist) {
		loadPath = ""
	}
	cfg, err := config.LoadFile(loadPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	model := tui.NewSetupModel(cfg.X.APIURL, publisher.Credentials{
		APIKey:       cfg.X.APIKey,
		APISecret:    cfg.X.APISecret,
		AccessToken:  cfg.X.AccessToken,
		AccessSecret: cfg.X.AccessSecret,
	})

	p := tea.NewProgram(model)
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	final := result.(tui.SetupModel)
	if !final.ShouldSave() {
		fmt.Println("Setup cancelled.")
		return nil
	}

	creds := final.Result()
	cfg.X.APIKey = creds.APIKey
	cfg.X.APISecret = creds.APISecret
	cfg.X.AccessToken = creds.AccessToken
	cfg.X.AccessSecret = creds.AccessSecret

	configPath := flagConfigFile
	if configPath == "" {
		if configPath, err = config.GetConfigPath(); err != nil {
			return err
		}
	}
	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Config saved to %s\n", configPath)
	return nil
}
