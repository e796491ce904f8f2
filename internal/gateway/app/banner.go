package app

import (
	"fmt"

	"collage/internal/gateway/config"
)

func printBanner(cfg *config.Config) {
	role := "dependent"
	if cfg.Root {
		role = "root/shell"
	}
	fmt.Printf("  collage dev gateway (%s)\n", role)
	fmt.Printf("  serving   %s on %s\n", cfg.AppRoot, cfg.Port)
	fmt.Printf("  receiver  %s\n", cfg.ReceiverPath)
	if cfg.Root {
		fmt.Printf("  sender    %s\n", cfg.SenderPath)
	}
	fmt.Println()
}
