package main

import "invoiceflow/cmd"

func main() {
	cmd.Execute()
}
