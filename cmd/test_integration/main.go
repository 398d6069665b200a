package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	baseURL = "http://localhost:8080"
)

func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	cards := []map[string]interface{}{
		{
			"id": "card-a", "type": "QA", "difficulty": 2.5,
			"front": "What is machine learning?",
			"back":  "Machine learning is a subset of artificial intelligence that enables computers to learn without being explicitly programmed.",
		},
		{
			"id": "card-b", "type": "QA", "difficulty": 2.1,
			"front": "What is machine learning?",
			"back":  "Machine learning is a subset of artificial intelligence that enables computers to learn without being explicitly programmed.",
		},
		{
			"id": "card-c", "type": "QA", "difficulty": 1.8,
			"front": "What is the capital of France?",
			"back":  "Paris is the capital of France.",
		},
	}

	payload := map[string]interface{}{"cards": cards}

	// 1. Deduplicate
	fmt.Println("1. Deduplicating cards...")
	if !sendRequest("POST", "/deduplicate", payload) {
		fmt.Println("FAILED: Deduplicate")
		os.Exit(1)
	}
	fmt.Println("PASSED: Deduplicate")

	// 2. Validate residual quality
	fmt.Println("2. Validating quality...")
	if !sendRequest("POST", "/validate", payload) {
		fmt.Println("FAILED: Validate")
		os.Exit(1)
	}
	fmt.Println("PASSED: Validate")
}

func sendRequest(method, endpoint string, payload interface{}) bool {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Response: %s\n", string(respBody))

	return true
}
