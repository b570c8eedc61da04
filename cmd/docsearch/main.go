package main

import (
	"github.com/joho/godotenv"

	"docsearch/internal/cli"
)

func main() {
	_ = godotenv.Load()
	cli.Execute()
}
