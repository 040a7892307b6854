package main

import "github.com/bluebay-mechanical/field-service-api/cmd"

func main() {
	cmd.Execute()
}
