package main

import "github.com/user/cyberusb/cmd"

func main() {
	cmd.Execute()
}
