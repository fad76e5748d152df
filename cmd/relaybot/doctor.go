package main

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostic checks on the relay configuration",
		Long: `Verifies that the relay's credentials, gateway settings and listen port
are correctly set up. Reports pass/fail for each check. Secret values are
never printed, only whether they are present.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("relaybot doctor v%s\n", version)
			fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

			passed := 0
			failed := 0
			warned := 0

			cfg, replies, err := loadAll()
			if err != nil {
				printFail("Configuration", err.Error())
				fmt.Printf("\n1 check failed\n")
				return fmt.Errorf("configuration invalid")
			}
			printPass("Configuration", "valid")
			passed++

			if cfg.HasClaudeKey() {
				printPass("Claude credential", "present")
				passed++
			} else {
				printFail("Claude credential", "CLAUDE_API_KEY is not set")
				failed++
			}

			if cfg.HasProject() {
				printPass("Knowledge base", "project reference present")
				passed++
			} else if cfg.Claude.RequireProject {
				printFail("Knowledge base", "CLAUDE_REQUIRE_PROJECT is set but CLAUDE_PROJECT_ID is missing")
				failed++
			} else {
				printWarn("Knowledge base", "no project reference, plain completions only")
				warned++
			}

			if cfg.CanSend() {
				printPass("Gateway", fmt.Sprintf("%s (instance %s)", cfg.Evolution.BaseURL, cfg.Evolution.Instance))
				passed++
			} else {
				printFail("Gateway", "EVOLUTION_BASE_URL, EVOLUTION_API_KEY and EVOLUTION_INSTANCE are all required")
				failed++
			}

			if cfg.RepliesFile != "" {
				printPass("Replies file", cfg.RepliesFile)
				passed++
			} else if replies.SystemPrompt != "" {
				printPass("Replies", "built-in defaults")
				passed++
			}

			if err := checkPort(cfg.Server.Port); err != nil {
				printWarn("Listen port", fmt.Sprintf("port %d may be in use: %v", cfg.Server.Port, err))
				warned++
			} else {
				printPass("Listen port", fmt.Sprintf(":%d available", cfg.Server.Port))
				passed++
			}

			fmt.Printf("\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
			fmt.Printf("Results: %d passed, %d warnings, %d failed\n", passed, warned, failed)
			if failed > 0 {
				fmt.Printf("\nPlease fix the failed checks before running the relay.\n")
				return fmt.Errorf("%d check(s) failed", failed)
			}
			if warned > 0 {
				fmt.Printf("\nThe relay should work but consider fixing the warnings.\n")
			} else {
				fmt.Printf("\nAll checks passed! The relay is ready to run.\n")
			}
			return nil
		},
	}
}

func checkPort(port int) error {
	l, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return err
	}
	return l.Close()
}

func printPass(check, detail string) {
	fmt.Printf("  ✓ %-20s %s\n", check, detail)
}

func printFail(check, detail string) {
	fmt.Printf("  ✗ %-20s %s\n", check, detail)
}

func printWarn(check, detail string) {
	fmt.Printf("  ⚠ %-20s %s\n", check, detail)
}
