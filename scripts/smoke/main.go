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
	"strings"
	"time"
)

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type step struct {
	Name   string
	Method string
	Path   string
	Body   interface{}
	Expect int
}

type outcome struct {
	Step     step
	Status   int
	Envelope envelope
	Duration time.Duration
	Error    error
}

func main() {
	var (
		baseURL string
		timeout time.Duration
		verbose bool
	)

	flag.StringVar(&baseURL, "base", "http://localhost:8080", "Student API base URL including any prefix")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.BoolVar(&verbose, "v", false, "Print response bodies")
	flag.Parse()

	client := &http.Client{Timeout: timeout}
	baseURL = strings.TrimRight(baseURL, "/")
	email := fmt.Sprintf("smoke.%d@example.com", time.Now().UnixNano())

	created := run(client, baseURL, step{
		Name:   "create",
		Method: http.MethodPost,
		Path:   "/students",
		Body: map[string]interface{}{
			"first_name":      "Alice",
			"last_name":       "Williams",
			"email":           email,
			"phone":           "555-0106",
			"date_of_birth":   "2001-06-20",
			"gender":          "Female",
			"address":         "987 Cedar Lane, TestCity, USA",
			"enrollment_date": "2024-02-01",
		},
		Expect: http.StatusCreated,
	}, verbose)
	if created.Error != nil {
		report([]outcome{created})
		os.Exit(1)
	}

	var student struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(created.Envelope.Data, &student); err != nil || student.ID == 0 {
		log.Fatalf("create returned no id: %v", err)
	}
	idPath := fmt.Sprintf("/students/%d", student.ID)

	steps := []step{
		{Name: "list", Method: http.MethodGet, Path: "/students", Expect: http.StatusOK},
		{Name: "read", Method: http.MethodGet, Path: idPath, Expect: http.StatusOK},
		{Name: "read by query", Method: http.MethodGet, Path: fmt.Sprintf("/students?id=%d", student.ID), Expect: http.StatusOK},
		{Name: "search", Method: http.MethodGet, Path: "/students?search=" + email, Expect: http.StatusOK},
		{Name: "duplicate email", Method: http.MethodPost, Path: "/students", Body: map[string]interface{}{
			"first_name": "Bob", "last_name": "Dup", "email": email,
		}, Expect: http.StatusConflict},
		{Name: "update", Method: http.MethodPut, Path: idPath, Body: map[string]interface{}{
			"id":              student.ID,
			"first_name":      "Alicia",
			"last_name":       "Williams",
			"email":           email,
			"phone":           "555-9999",
			"gender":          "Female",
			"enrollment_date": "2024-02-01",
		}, Expect: http.StatusOK},
		{Name: "export", Method: http.MethodGet, Path: "/students/export?format=csv&search=" + email, Expect: http.StatusOK},
		{Name: "delete", Method: http.MethodDelete, Path: idPath, Expect: http.StatusOK},
		{Name: "delete again", Method: http.MethodDelete, Path: idPath, Expect: http.StatusNotFound},
	}

	outcomes := []outcome{created}
	for _, s := range steps {
		outcomes = append(outcomes, run(client, baseURL, s, verbose))
	}

	if failures := report(outcomes); failures > 0 {
		os.Exit(1)
	}
}

func run(client *http.Client, baseURL string, s step, verbose bool) outcome {
	result := outcome{Step: s}

	var body io.Reader
	if s.Body != nil {
		payload, err := json.Marshal(s.Body)
		if err != nil {
			result.Error = err
			return result
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(s.Method, baseURL+s.Path, body)
	if err != nil {
		result.Error = err
		return result
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := client.Do(req)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err
		return result
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Error = err
		return result
	}
	result.Status = resp.StatusCode
	if verbose {
		fmt.Printf("%s %s -> %d\n%s\n\n", s.Method, s.Path, resp.StatusCode, raw)
	}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(raw, &result.Envelope); err != nil {
			result.Error = fmt.Errorf("decode envelope: %w", err)
			return result
		}
	}
	if resp.StatusCode != s.Expect {
		result.Error = fmt.Errorf("expected status %d, got %d (%s)", s.Expect, resp.StatusCode, result.Envelope.Message)
	}
	return result
}

func report(outcomes []outcome) int {
	failures := 0
	fmt.Println("Student API smoke test")
	fmt.Println(strings.Repeat("-", 60))
	for _, o := range outcomes {
		status := "PASS"
		if o.Error != nil {
			status = "FAIL"
			failures++
		}
		fmt.Printf("%-4s %-16s %-6s %-28s %3d %8s\n", status, o.Step.Name, o.Step.Method, truncate(o.Step.Path, 28), o.Status, o.Duration.Round(time.Millisecond))
		if o.Error != nil {
			fmt.Printf("     %v\n", o.Error)
		}
	}
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("%d steps, %d failed\n", len(outcomes), failures)
	return failures
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
