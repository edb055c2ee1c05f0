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

	// 1. Ingest the graph: one candidate linked to skills and a profile.
	fmt.Println("1. Ingesting Entities...")
	entityPayload := map[string]interface{}{
		"entities": []map[string]interface{}{
			{"id": "cloud_architect", "type": "PROFILE", "display_name": "Cloud Architect"},
			{"id": "kubernetes", "type": "SKILL", "display_name": "Kubernetes"},
			{"id": "aws", "type": "SKILL", "display_name": "AWS"},
			{"id": "cv_013", "type": "CANDIDATE", "display_name": "cv_013"},
		},
		"relationships": []map[string]interface{}{
			{"source_id": "cv_013", "target_id": "kubernetes", "relation_type": "HAS_SKILL"},
			{"source_id": "cv_013", "target_id": "aws", "relation_type": "HAS_SKILL"},
			{"source_id": "cv_013", "target_id": "cloud_architect", "relation_type": "HAS_PROFILE"},
		},
	}

	if !sendRequest("POST", "/ingest/entities", entityPayload) {
		fmt.Println("FAILED: Ingest entities")
		os.Exit(1)
	}
	fmt.Println("PASSED: Ingest entities")

	// 2. Ingest a chunk from the candidate's document.
	fmt.Println("2. Ingesting Chunks...")
	chunkPayload := map[string]interface{}{
		"chunks": []map[string]interface{}{
			{
				"id":           "cv_013_chunk_0",
				"document_id":  "cv_013_doc",
				"order_index":  0,
				"content":      "Ten years designing cloud platforms on AWS with Kubernetes.",
				"candidate_id": "cv_013",
			},
		},
	}

	if !sendRequest("POST", "/ingest/chunks", chunkPayload) {
		fmt.Println("FAILED: Ingest chunks")
		os.Exit(1)
	}
	fmt.Println("PASSED: Ingest chunks")

	// 3. Search
	fmt.Println("3. Searching...")
	searchPayload := map[string]interface{}{
		"profile_name":    "Cloud Architect",
		"required_skills": []string{"Kubernetes"},
		"top_k":           5,
	}

	if !sendRequest("POST", "/search", searchPayload) {
		fmt.Println("FAILED: Search")
		os.Exit(1)
	}
	fmt.Println("PASSED: Search")
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
