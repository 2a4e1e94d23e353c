// Package main provides the aarcnorm command-line tool: normalize the flat
// AARC hiring table, persist it, sample it and report on it.
package main

func main() {
	Execute()
}
