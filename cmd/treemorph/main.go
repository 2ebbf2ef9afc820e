package main

import "github.com/arixlabs/treemorph/cmd"

func main() {
	cmd.Execute()
}
