package main

import (
	"flag"
	"fmt"
	"net/http"
	"time"
)

// Polls the contacts page until the app answers with OK or the timeout has passed.
//
// Usage example on the command line:
// > go run main.go -url=http://localhost:8080/contacts -timeout=2m
func main() {
	urlPtr := flag.String("url", "http://localhost:8080/contacts", "the page to poll")
	timeoutPtr := flag.Duration("timeout", 5*time.Minute, "how long to wait before giving up")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}
	deadline := time.Now().Add(*timeoutPtr)
	totalWaitTime := 0
	for {
		res, err := client.Get(*urlPtr)
		if err == nil {
			res.Body.Close()
			if res.StatusCode == http.StatusOK {
				fmt.Println(res.Status)
				break
			}
			fmt.Println(res.Status)
		} else {
			fmt.Println(err)
		}
		if time.Now().After(deadline) {
			panic(fmt.Sprintf("%s not available after %s", *urlPtr, *timeoutPtr))
		}
		totalWaitTime += 5
		fmt.Printf("Waiting %d seconds", totalWaitTime)
		fmt.Println()
		time.Sleep(5 * time.Second)
	}
}
