package main

import "github.com/ftl/touchdso/cmd"

func main() {
	cmd.Execute()
}
