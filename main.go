package main

import "SmartCanteen-Backend/cmd"

func main() {
	cmd.Execute()
}
