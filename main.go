package main

import "github.com/KaramelBytes/uvmed-cli/cmd"

func main() {
	cmd.Execute()
}
