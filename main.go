package main

import "github.com/ivanzzeth/chainsim/cmd"

func main() {
	cmd.Execute()
}
