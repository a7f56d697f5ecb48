package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
)

// Kicks off a manual scrape against a running server and prints the ack.
func main() {
	base := os.Getenv("TRACKER_URL")
	if base == "" {
		base = "http://localhost:8080"
	}

	resp, err := http.Post(base+"/api/scrape-now", "application/json", nil)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("Response Status: %s\n", resp.Status)
	fmt.Println(string(body))
	if resp.StatusCode != http.StatusAccepted {
		os.Exit(1)
	}
}
