package main

import "fitai-planner-be/internal/cli"

func main() {
	cli.Execute()
}
