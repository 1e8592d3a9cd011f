package main

import (
	"os"

	"github.com/Dimaray2024/xiaona/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
