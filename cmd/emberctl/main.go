package main

import "emberctl/cmd/emberctl/cmd"

func main() {
	cmd.Execute()
}
