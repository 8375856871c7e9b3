package main

import (
	"github.com/atlasprime/atlas/internal/cmd"
)

func main() {
	cmd.Execute()
}
