package main

import "github.com/KaramelBytes/rxslot-cli/cmd"

func main() {
	cmd.Execute()
}
