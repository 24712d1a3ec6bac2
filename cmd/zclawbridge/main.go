package main

import (
	"errors"
	"fmt"
	"os"

	"zclawbridge/internal/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		var exit *app.ExitError
		if errors.As(err, &exit) {
			os.Exit(exit.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
