package main

import "github.com/rustyeddy/mocktrade/internal/cli"

func main() {
	cli.Execute()
}
