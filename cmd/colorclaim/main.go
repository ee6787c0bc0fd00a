package main

import "github.com/mcoot/colorclaim/internal/cli"

func main() {
	cli.Execute()
}
