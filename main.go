package main

import "github.com/celebware/starspot/cmd"

func main() {
	cmd.Execute()
}
