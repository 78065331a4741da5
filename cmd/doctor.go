package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/glyphbot/glyph/internal/config"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check environment and configuration health",
		Run: func(cmd *cobra.Command, args []string) {
			runDoctor()
		},
	}
}

func runDoctor() {
	fmt.Println("glyph doctor")
	fmt.Printf("  Version:  %s\n", Version)
	fmt.Printf("  OS:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  Go:       %s\n", runtime.Version())
	fmt.Println()

	cfgPath := resolveConfigPath()
	fmt.Printf("  Config:   %s", cfgPath)
	if _, err := os.Stat(cfgPath); err != nil {
		fmt.Println(" (NOT FOUND — env vars only)")
	} else {
		fmt.Println(" (OK)")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  Config load error: %s\n", err)
		return
	}

	fmt.Println()
	fmt.Println("  Credentials:")
	fmt.Printf("    %-16s %s\n", "Discord token:", presence(cfg.Discord.Token))
	fmt.Printf("    %-16s %s\n", "NLU token:", presence(cfg.NLU.Token))
	fmt.Printf("    %-16s %s\n", "Botlist token:", presence(cfg.Botlist.Token))

	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Printf("    %-16s %s\n", "NLU:", cfg.NLU.Endpoint)
	fmt.Printf("    %-16s %s\n", "FA export:", cfg.Lookup.FAExportEndpoint)
	fmt.Printf("    %-16s %s\n", "Haste:", cfg.Lookup.HasteEndpoint)

	fmt.Println()
	if err := cfg.Validate(); err != nil {
		fmt.Printf("  Status: NOT READY — %s\n", err)
		return
	}
	fmt.Println("  Status: ready")
}

func presence(secret string) string {
	if secret == "" {
		return "missing"
	}
	return "set"
}
