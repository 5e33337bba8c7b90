// main.go
package main

import "github.com/gewnthar/covidtesting/cmd"

func main() {
	cmd.Execute()
}
