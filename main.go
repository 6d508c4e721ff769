package main

import "github.com/kolli-project/kolli-dashboard/cmd"

func main() {
	cmd.Execute()
}
