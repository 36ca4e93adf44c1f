package main

import (
	"stream-compiler-service/app"
	"stream-compiler-service/pkg/observability"
)

func main() {
	observability.StartProfiling("stream-compiler-service")
	app.Run()
}
