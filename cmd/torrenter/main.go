package main

import "github.com/pojntfx/torrenter/cmd/torrenter/cmd"

func main() {
	if err := cmd.Execute(); err != nil {
		panic(err)
	}
}
