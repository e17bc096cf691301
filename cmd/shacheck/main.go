// Package main is the shacheck CLI entrypoint.
package main

import (
	"os"

	"shacheck/internal/app"
)

func main() {
	application := app.New()
	os.Exit(application.Run(os.Args[1:]))
}
