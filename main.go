package main

import "github.com/dashlens/dashlens/cmd"

func main() {
	cmd.Execute()
}
