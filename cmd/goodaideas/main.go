package main

import "github.com/0xAcousticbridge/GAID/internal/cmd"

func main() {
	cmd.Execute()
}
