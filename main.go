package main

import (
	_ "github.com/joho/godotenv/autoload"

	"nightlife-navigator/cmd"
)

func main() {
	cmd.Execute()
}
