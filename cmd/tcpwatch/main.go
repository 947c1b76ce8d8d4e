// Package main enables tcpwatch to execute as a CLI tool
package main

import (
	"os"

	"github.com/pouriyajamshidi/tcpwatch/internal/app"
)

func main() {
	os.Exit(app.Run())
}
