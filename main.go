package main

import "keel/cmd"

func main() {
	cmd.Execute()
}
