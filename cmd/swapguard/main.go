package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/ligun0805/swapguard/internal/logger"
)

func main() {
	_ = godotenv.Load()
	_ = godotenv.Overload(".env.local")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, friendlyError(err.Error()))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}
