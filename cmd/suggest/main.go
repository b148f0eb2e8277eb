package main

import (
	"github.com/joho/godotenv"

	"suggest/internal/cli"
)

func main() {
	// Load .env file if it exists (for the model API key)
	_ = godotenv.Load()

	cli.Execute()
}
