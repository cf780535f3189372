package main

import (
	"os"

	cmd "github.com/Geun-Oh/gtee/cmd/gtee"
)

func main() {
	os.Exit(cmd.Execute())
}
