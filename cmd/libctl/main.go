package main

import "schoollibrary/cmd/libctl/command"

func main() {
	command.Execute()
}
