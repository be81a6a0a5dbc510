// Command catalog_push uploads a catalog dump to a running planner API and
// optionally fires a smoke search afterwards, for deploy verification.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

type importRequest struct {
	File string `json:"file"`
}

type smokeRequest struct {
	Courses []string `json:"courses"`
	Limit   int      `json:"limit"`
}

func main() {
	var (
		base    string
		file    string
		smoke   string
		timeout time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "planner API base URL")
	flag.StringVar(&file, "file", "", "catalog file name, relative to the server import directory")
	flag.StringVar(&smoke, "smoke", "", "course key to smoke-search after import (optional)")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	if file == "" {
		flag.Usage()
		os.Exit(2)
	}

	client := &http.Client{Timeout: timeout}

	status, body, err := post(client, base+"/api/v1/catalog/import", importRequest{File: file})
	if err != nil {
		log.Fatalf("import request failed: %v", err)
	}
	if status != http.StatusOK {
		log.Fatalf("import rejected: status=%d body=%s", status, body)
	}
	fmt.Printf("import ok: %s\n", body)

	if smoke == "" {
		return
	}

	status, body, err = post(client, base+"/api/v1/search/priority", smokeRequest{Courses: []string{smoke}, Limit: 1})
	if err != nil {
		log.Fatalf("smoke search failed: %v", err)
	}
	if status != http.StatusOK {
		log.Fatalf("smoke search rejected: status=%d body=%s", status, body)
	}
	fmt.Printf("smoke search ok: %s\n", body)
}

func post(client *http.Client, url string, payload interface{}) (int, string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, "", err
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, "", err
	}
	return resp.StatusCode, string(body), nil
}
