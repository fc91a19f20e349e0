package main

import "github.com/fakeyudi/reelwatch/cmd"

func main() {
	cmd.Execute()
}
