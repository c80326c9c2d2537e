package main

import (
	"os"

	"github.com/yahsan2/backlog-import/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
