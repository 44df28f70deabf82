package main

import "github.com/cartloom/cartloom/cmd"

func main() {
	cmd.Execute()
}
