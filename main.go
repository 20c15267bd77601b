package main

import "github.com/DataWorkbench/paimonweb/cmd"

func main() {
	cmd.Execute()
}
