// Package main is the entry point for the pimirror display mirroring daemon.
package main

func main() {
	Execute()
}
