package main

import "pdflens/cmd/pdflens/cmd"

func main() {
	cmd.Execute()
}
