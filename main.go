package main

import "github.com/juantresde/feterms/cmd"

func main() {
	cmd.Execute()
}
