package main

import (
	"os"

	"github.com/ambulancia-platform/ms-auth/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
