package main

import "github.com/stegus64/plucklogviz/internal/cmd"

func main() {
	cmd.Execute()
}
