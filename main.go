package main

import (
	"github.com/papyrus-notes/table-engine/cmd"
)

func main() {
	cmd.Execute()
}
