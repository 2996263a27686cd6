package main

import "github.com/PinjariAbdul/smart-task-analyser/cmd"

func main() {
	cmd.Execute()
}
