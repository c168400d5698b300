// Command smoke exercises the full feedback flow against a running server:
// teacher registers and creates a session, a student registers, discovers and
// joins it, submits feedback, and the teacher reads back the aggregate.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	var (
		base    string
		timeout time.Duration
	)
	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	client := &http.Client{Timeout: timeout}
	suffix := time.Now().UnixNano()

	var teacherAuth struct {
		Token string `json:"token"`
	}
	post(client, base+"/teacher/register", "", map[string]interface{}{
		"name":     "Smoke Teacher",
		"email":    fmt.Sprintf("smoke-teacher-%d@example.com", suffix),
		"password": "smoke-pass",
	}, &teacherAuth)

	var session struct {
		ID string `json:"id"`
	}
	post(client, base+"/session/create-session", teacherAuth.Token, map[string]interface{}{
		"date": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	}, &session)
	log.Printf("created session %s", session.ID)

	var studentAuth struct {
		Token string `json:"token"`
	}
	post(client, base+"/student/register", "", map[string]interface{}{
		"name":     "Smoke Student",
		"email":    fmt.Sprintf("smoke-student-%d@example.com", suffix),
		"password": "smoke-pass",
	}, &studentAuth)

	var all []struct {
		ID string `json:"id"`
	}
	get(client, base+"/session/get-all-sessions", "", &all)
	if !containsSession(all, session.ID) {
		log.Fatalf("session %s missing from discovery list", session.ID)
	}

	post(client, base+"/student/join-session", studentAuth.Token, map[string]interface{}{
		"sessionId": session.ID,
	}, nil)

	var enrolled []struct {
		ID string `json:"id"`
	}
	get(client, base+"/session/get-student-sessions", studentAuth.Token, &enrolled)
	if !containsSession(enrolled, session.ID) {
		log.Fatalf("session %s missing from enrolled list", session.ID)
	}

	post(client, base+"/student/submit-feedback", studentAuth.Token, map[string]interface{}{
		"sessionId": session.ID,
		"rating":    5,
		"feedback":  "great",
	}, nil)

	var summary struct {
		TotalRating *float64 `json:"totalRating"`
		Count       int      `json:"count"`
	}
	get(client, base+"/session/get-rating?sessionId="+session.ID, teacherAuth.Token, &summary)
	if summary.TotalRating == nil || *summary.TotalRating != 5 || summary.Count != 1 {
		log.Fatalf("unexpected rating summary: %+v", summary)
	}

	log.Println("smoke flow passed")
}

func containsSession(sessions []struct {
	ID string `json:"id"`
}, id string) bool {
	for _, s := range sessions {
		if s.ID == id {
			return true
		}
	}
	return false
}

func post(client *http.Client, url, token string, payload interface{}, out interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Fatalf("marshal payload for %s: %v", url, err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Fatalf("build request for %s: %v", url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	do(client, req, token, out)
}

func get(client *http.Client, url, token string, out interface{}) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		log.Fatalf("build request for %s: %v", url, err)
	}
	do(client, req, token, out)
}

func do(client *http.Client, req *http.Request, token string, out interface{}) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		log.Fatalf("%s %s: decode response: %v", req.Method, req.URL, err)
	}
	if env.Error != nil {
		log.Fatalf("%s %s: %d %s %s", req.Method, req.URL, resp.StatusCode, env.Error.Code, env.Error.Message)
	}
	if resp.StatusCode >= 300 {
		log.Fatalf("%s %s: unexpected status %d", req.Method, req.URL, resp.StatusCode)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			log.Fatalf("%s %s: decode data: %v", req.Method, req.URL, err)
		}
	}
}
