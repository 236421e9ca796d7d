package main

import "github.com/tyrelab/tyredeg/cmd"

func main() {
	cmd.Execute()
}
