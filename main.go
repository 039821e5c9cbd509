package main

import "github.com/kevinwood15/noshow/cmd"

func main() {
	cmd.Execute()
}
