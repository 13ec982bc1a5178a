package server

import (
	"log"
	"os"
)

func testLogger() *log.Logger {
	return log.New(os.Stderr, "[TEST] ", 0)
}
