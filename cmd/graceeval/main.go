// Command graceeval is a line-at-a-time REPL for the constant-folding
// subset of Grace expressions, useful for poking at eval.go in
// isolation from a whole program.
package main

import (
	"bufio"
	"fmt"
	"os"

	"grace"
)

var eval = grace.NewEvaluator()

func main() {
	repl()
}

func repl() {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = line[:len(line)-1]
		if line == "" {
			continue
		}
		expr, err := grace.ParseConstExprAndEof("<graceeval>", []byte(line))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		obj, ok := eval.EvaluateConst(expr)
		if !ok {
			fmt.Fprintln(os.Stderr, "not a compile-time constant")
			continue
		}
		fmt.Println(obj.String())
	}
}
