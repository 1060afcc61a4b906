package main

import "github.com/biograph/biograph/cmd/biograph/cmd"

func main() {
	cmd.Execute()
}
