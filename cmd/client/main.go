package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// contactLink finds the ids in the rows of the contact table.
var contactLink = regexp.MustCompile(`hx-get="/contacts/(\d+)"`)

var baseURL string

// Measures the average duration in microseconds of the create, update, show and delete requests
// for growing numbers of contacts.
//
// Usage example on the command line:
// > go run main.go -url=http://localhost:8080
func main() {
	flag.StringVar(&baseURL, "url", "http://localhost:8080", "the address of the contacts app")
	flag.Parse()

	fmt.Println()
	fmt.Println("  Elements    CREATE    UPDATE       GET    DELETE ")
	fmt.Println("---------------------------------------------------")
	sizes := []int{100, 500, 1000, 5000}
	for round, loops := range sizes {
		tag := fmt.Sprintf("bench%d-%d", time.Now().UnixNano(), round)
		fmt.Printf("%10d", loops)
		{
			// create requests
			var duration int64
			for i := 0; i < loops; i++ {
				_, d := sendRequest(http.MethodPost, baseURL+"/contacts/create", contactForm(tag, i, "Antonius"))
				duration += d
			}
			fmt.Printf("%10d", duration/int64(loops*1000))
		}
		ids := findIDs(tag)
		if len(ids) != loops {
			panic(fmt.Sprintf("created %d contacts but found %d", loops, len(ids)))
		}
		{
			// update requests
			f := func(i int, id int64) int64 {
				_, d := sendRequest(http.MethodPost, fmt.Sprintf("%s/contacts/%d/update", baseURL, id), contactForm(tag, i, "Triumvir"))
				return d
			}
			callInLoop(ids, f)
		}
		{
			// show requests
			f := func(_ int, id int64) int64 {
				_, d := sendRequest(http.MethodGet, fmt.Sprintf("%s/contacts/%d", baseURL, id), nil)
				return d
			}
			callInLoop(ids, f)
		}
		{
			// delete requests
			f := func(_ int, id int64) int64 {
				_, d := sendRequest(http.MethodDelete, fmt.Sprintf("%s/contacts/%d", baseURL, id), nil)
				return d
			}
			callInLoop(ids, f)
		}
		fmt.Println()
	}
}

// contactForm returns the form of the i-th contact of a round. The tag keeps the emails unique
// across rounds and runs.
func contactForm(tag string, i int, last string) url.Values {
	return url.Values{
		"first": {"Marcus"},
		"last":  {last},
		"phone": {"+39 999 777 555"},
		"email": {fmt.Sprintf("marcus.%d@%s.example.com", i, tag)},
	}
}

// findIDs searches for the contacts of a round and returns their ids.
func findIDs(tag string) []int64 {
	body, _ := sendRequest(http.MethodGet, baseURL+"/contacts/search?q="+url.QueryEscape(tag), nil)
	var ids []int64
	for _, match := range contactLink.FindAllStringSubmatch(string(body), -1) {
		id, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			panic(err)
		}
		ids = append(ids, id)
	}
	return ids
}

// callInLoop calls f for every id in random order and prints the average duration.
func callInLoop(ids []int64, f func(i int, id int64) int64) {
	order := rand.Perm(len(ids))
	var duration int64
	for _, i := range order {
		duration += f(i, ids[i])
	}
	fmt.Printf("%10d", duration/int64(len(ids)*1000))
}

func sendRequest(method string, requestURL string, form url.Values) ([]byte, int64) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, requestURL, body)
	if err != nil {
		fmt.Println("could not create request", err)
		panic(err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	before := time.Now().UnixNano()
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("error making http request", err)
		panic(err)
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		fmt.Println("could not read response body", err)
		panic(err)
	}
	after := time.Now().UnixNano()
	if res.StatusCode != http.StatusOK {
		panic(fmt.Sprintf("%s %s answered %s", method, requestURL, res.Status))
	}
	return resBody, after - before
}
