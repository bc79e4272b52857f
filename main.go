package main

import "cratedocs/cmd"

func main() {
	cmd.Execute()
}
