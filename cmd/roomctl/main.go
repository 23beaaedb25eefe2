package main

import "github.com/watchroom/server/cmd/roomctl/cmd"

func main() {
	cmd.Execute()
}
