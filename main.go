package main

import "github.com/sabucaps/brazilian/cmd"

func main() {
	cmd.Execute()
}
