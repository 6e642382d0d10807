package main

import "github.com/jsphweid/rhythmdrill/cmd"

func main() {
	cmd.Execute()
}
