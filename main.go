package main

import "github.com/KaramelBytes/depdash-cli/cmd"

func main() {
	cmd.Execute()
}
