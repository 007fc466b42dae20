package main

import (
	"fmt"
	"os"

	"fjacquet/doc-recognizer/cmd/categories"
	"fjacquet/doc-recognizer/cmd/classify"
	"fjacquet/doc-recognizer/cmd/detect"
	"fjacquet/doc-recognizer/cmd/expenses"
	"fjacquet/doc-recognizer/cmd/recognize"
	"fjacquet/doc-recognizer/cmd/root"
	"fjacquet/doc-recognizer/cmd/serve"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(recognize.Cmd)
	root.Cmd.AddCommand(detect.Cmd)
	root.Cmd.AddCommand(classify.Cmd)
	root.Cmd.AddCommand(categories.Cmd)
	root.Cmd.AddCommand(expenses.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
