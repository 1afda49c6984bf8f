package main

import "github.com/portablepy/portable-bundler/cmd/portable-bundler/cmd"

func main() {
	cmd.Execute()
}
