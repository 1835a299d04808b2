package main

import "github.com/alexiusacademia/gobulb/cmd"

func main() {
	cmd.Execute()
}
