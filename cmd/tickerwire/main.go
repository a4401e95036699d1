package main

import (
	"os"

	"horse.fit/tickerwire/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
