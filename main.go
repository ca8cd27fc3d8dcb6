package main

import (
	"os"

	"github.com/fpscan/fpscan/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
