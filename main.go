package main

import (
	"github.com/simplybook-mcp/sbmcp/cmd"
)

func main() {
	cmd.Execute()
}
