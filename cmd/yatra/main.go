package main

import "github.com/Vishnuvardhanvemula/FinanceYatra/internal/cli"

func main() {
	cli.Execute()
}
