package main

import "github.com/ogulcanaydogan/focusboard/internal/cli"

func main() {
	cli.Execute()
}
