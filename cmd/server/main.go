package main

import "github.com/imlinkk/QLNS/internal/app/server"

func main() {
	server.Run()
}
