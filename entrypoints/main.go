package main

import (
	"github.com/Laisky/image-mcp/cmd"
)

func main() {
	cmd.Execute()
}
