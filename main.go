package main

import (
	"os"

	"github.com/Davis1233798/note/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
