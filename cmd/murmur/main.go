package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Backend credentials come from the environment; a local .env is
	// honored when present.
	_ = godotenv.Load()

	Execute()
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
