// Package cli provides the command-line interface for putcall
package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/ydegt/putcall/config"
)

// Run starts the CLI application
func Run() {
	rootCmd := NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

var welcomeStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#7C3AED"))

// runInteractiveMode walks the user through queries with prompts.
func runInteractiveMode(cfg *config.Config) error {
	fmt.Println(welcomeStyle.Render("putcall - Put/Call Ratio Calculator"))
	fmt.Println()

	for {
		symbol, err := PromptForSymbol()
		if err != nil {
			return err
		}

		dateStrike, err := PromptForDateStrike()
		if err != nil {
			return err
		}

		chart, err := PromptForChart()
		if err != nil {
			return err
		}

		if err := runPCRCommand(cfg, symbol, dateStrike, nil, nil, chart); err != nil {
			fmt.Printf("❌ %v\n", err)
		}

		fmt.Println()
		again, err := PromptForAnother()
		if err != nil || !again {
			return err
		}
		fmt.Println()
	}
}
