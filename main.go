package main

import "cocon/cooc/cmd"

func main() {
	cmd.Execute()
}
