package main

import "github.com/Tiliavir/adolog/cmd"

func main() {
	cmd.Execute()
}
