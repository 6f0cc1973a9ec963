package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(body []byte) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		fmt.Println(string(body))
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{} // No timeout, generation can take ~1 min
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	color.Cyan("🚀 Emojify API smoke test\n")

	email := fmt.Sprintf("smoke+%d@example.com", os.Getpid())

	// 1. Register
	color.Yellow("\n1. Register")
	resp, body, err := sendRequest("POST", "/auth/register", "", map[string]string{
		"email":        email,
		"password":     "smoke-test-password",
		"display_name": "Smoke Test",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(body)

	var auth struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &auth); err != nil || auth.Data.AccessToken == "" {
		color.Red("No access token in register response")
		os.Exit(1)
	}
	token := auth.Data.AccessToken

	// 2. Current user
	color.Yellow("\n2. GET /users/me")
	resp, body, _ = sendRequest("GET", "/users/me", token, nil)
	color.Green("Status: %s", resp.Status)
	prettyPrint(body)

	// 3. Usage before generating
	color.Yellow("\n3. GET /users/me/usage")
	resp, body, _ = sendRequest("GET", "/users/me/usage", token, nil)
	color.Green("Status: %s", resp.Status)
	prettyPrint(body)

	// 4. Generate (requires REPLICATE_API_TOKEN on the server)
	color.Yellow("\n4. POST /generate")
	resp, body, _ = sendRequest("POST", "/generate", token, map[string]string{
		"prompt": "a smiling taco wearing sunglasses",
	})
	color.Green("Status: %s", resp.Status)
	prettyPrint(body)

	// 5. Plans
	color.Yellow("\n5. GET /billing/plans")
	resp, body, _ = sendRequest("GET", "/billing/plans", "", nil)
	color.Green("Status: %s", resp.Status)
	prettyPrint(body)

	color.Cyan("\nDone.")
}
