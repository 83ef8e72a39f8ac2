package main

import "github.com/kasuganosora/relicsave/cmd"

func main() {
	cmd.Execute()
}
