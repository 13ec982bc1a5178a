package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{Use: "deepchat", Short: "Agent chat service with web search and deep research"}
	root.AddCommand(serveCMD(), migrateCMD(), researchCMD())
	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
