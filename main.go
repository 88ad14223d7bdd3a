package main

import (
	"MusicRoom/cmd"
)

func main() {
	cmd.Execute()
}
