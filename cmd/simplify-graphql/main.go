package main

import "github.com/simplify-framework/graphql/cmd"

func main() {
	cmd.Execute()
}
