package main

import "github.com/agentic-research/flowline/cmd"

func main() {
	cmd.Execute()
}
