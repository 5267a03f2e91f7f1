package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stepmill/stepmill"
	"github.com/stepmill/stepmill/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate <definition>",
	Short: "Check a definition for consistency",
	Long:  `Parses a definition file and reports dangling transitions, malformed choice rules and incomplete states.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(args[0]); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Definition is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read definition: %w", err)
	}

	def, err := stepmill.Parse(data)
	if err != nil {
		return err
	}

	return validator.Validate(def)
}
