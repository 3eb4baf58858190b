package cli

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/ydegt/putcall/internal/expiry"
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9.-]+$`)

// PromptForSymbol prompts the user to enter a security symbol
func PromptForSymbol() (string, error) {
	var symbol string
	prompt := &survey.Input{
		Message: "Enter the security symbol (e.g., AAPL, MSFT, GOOGL):",
		Help:    "Please enter a valid security symbol",
	}

	err := survey.AskOne(prompt, &symbol, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(strings.ToUpper(val.(string)))
		if len(str) == 0 {
			return fmt.Errorf("symbol cannot be empty")
		}
		if len(str) > 10 {
			return fmt.Errorf("symbol too long (max 10 characters)")
		}
		if !symbolPattern.MatchString(str) {
			return fmt.Errorf("invalid symbol format (use letters, numbers, dots, and hyphens only)")
		}
		return nil
	}))

	if err != nil {
		return "", err
	}

	return strings.TrimSpace(strings.ToUpper(symbol)), nil
}

// PromptForDateStrike prompts the user for a date/strike expression
func PromptForDateStrike() (string, error) {
	var input string
	prompt := &survey.Input{
		Message: `Enter the expiration expression ("Nov", "Nov 29", "Nov 29, 150", or "all"):`,
		Help:    "A month alone resolves to the monthly expiration (third Friday); adding a day picks an exact date; a trailing number targets one strike.",
	}

	err := survey.AskOne(prompt, &input, survey.WithValidator(func(val interface{}) error {
		_, parseErr := expiry.ParseExpression(val.(string))
		return parseErr
	}))

	if err != nil {
		return "", err
	}

	return strings.TrimSpace(input), nil
}

// PromptForChart asks whether to render the PCR chart
func PromptForChart() (bool, error) {
	chart := false
	prompt := &survey.Confirm{
		Message: "Render a PCR vs strike chart?",
		Default: false,
	}
	err := survey.AskOne(prompt, &chart)
	return chart, err
}

// PromptForAnother asks whether to run another query
func PromptForAnother() (bool, error) {
	again := true
	prompt := &survey.Confirm{
		Message: "Run another query?",
		Default: true,
	}
	err := survey.AskOne(prompt, &again)
	return again, err
}
