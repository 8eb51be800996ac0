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

var baseURL = "http://localhost:8000"

// Manual smoke test: walks a full game against a running server and prints
// each response. Requires Neo4j and an LLM provider to be configured.
func main() {
	if v := os.Getenv("BASE_URL"); v != "" {
		baseURL = v
	}

	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting smoke test...")

	// 1. Start game
	fmt.Println("1. Starting game...")
	start := struct {
		SessionID string   `json:"session_id"`
		Topics    []string `json:"topics"`
	}{}
	if !request("GET", "/start", nil, &start) || start.SessionID == "" {
		fail("start game")
	}
	fmt.Printf("   session %s, topics %v\n", start.SessionID, start.Topics)

	// 2. First question on the first offered topic
	fmt.Println("2. Requesting first question...")
	question := struct {
		Question string `json:"question"`
		Options  []struct {
			Text string `json:"text"`
		} `json:"options"`
	}{}
	payload := map[string]interface{}{
		"session_id": start.SessionID,
		"topic":      start.Topics[0],
	}
	if !request("POST", "/first_question", payload, &question) || len(question.Options) == 0 {
		fail("first question")
	}
	fmt.Printf("   %s\n", question.Question)

	// 3. Answer it with the first option
	fmt.Println("3. Answering...")
	next := struct {
		Question string `json:"question"`
	}{}
	payload = map[string]interface{}{
		"session_id":    start.SessionID,
		"question_text": question.Question,
		"chosen_answer": question.Options[0].Text,
	}
	if !request("POST", "/answer", payload, &next) || next.Question == "" {
		fail("answer")
	}
	fmt.Printf("   next: %s\n", next.Question)

	// 4. Fetch the graph and expect the quiz-phase path
	fmt.Println("4. Fetching graph...")
	graph := struct {
		Nodes []struct {
			Type string `json:"type"`
		} `json:"nodes"`
		Links []interface{} `json:"links"`
	}{}
	if !request("GET", "/graph/"+start.SessionID, nil, &graph) {
		fail("graph")
	}
	questions := 0
	for _, n := range graph.Nodes {
		if n.Type == "question" {
			questions++
		}
	}
	if questions < 2 {
		fail(fmt.Sprintf("graph: expected at least 2 questions, got %d", questions))
	}
	fmt.Printf("   %d nodes, %d links\n", len(graph.Nodes), len(graph.Links))

	fmt.Println("PASSED")
}

func request(method, path string, payload interface{}, out interface{}) bool {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("marshal error: %v\n", err)
			return false
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		fmt.Printf("request error: %v\n", err)
		return false
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("http error: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("status %d: %s\n", resp.StatusCode, data)
		return false
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			fmt.Printf("unmarshal error: %v\nbody: %s\n", err, data)
			return false
		}
	}
	return true
}

func fail(step string) {
	fmt.Printf("FAILED: %s\n", step)
	os.Exit(1)
}
