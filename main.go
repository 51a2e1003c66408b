package main

import "github.com/vortexlab/vortexfd/cmd"

func main() {
	cmd.Execute()
}
