package main

import (
	"github.com/joho/godotenv"

	"wikirag/cmd"
)

func main() {
	// Credentials may live in a .env file next to the binary.
	_ = godotenv.Load()

	cmd.Execute()
}
