package main

import "cip/cmd"

func main() {
	cmd.Execute()
}
