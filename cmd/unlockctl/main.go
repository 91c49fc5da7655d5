package main

import (
	_ "github.com/joho/godotenv/autoload"

	"unlockmart/internal/cli"
)

func main() {
	cli.Execute()
}
