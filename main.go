package main

import "couply-backend/cmd"

func main() {
	cmd.Run()
}
