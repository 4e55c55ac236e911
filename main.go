package main

import "github.com/emrgen/metadata/cmd"

func main() {
	cmd.Execute()
}
