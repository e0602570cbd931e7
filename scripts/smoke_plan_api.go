package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
)

const smokeUser = "smoke-user"

func baseURL() string {
	if v := os.Getenv("SMOKE_BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:3000"
}

// token signs a short-lived token when the server runs with JWT_SECRET.
func token() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return ""
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": smokeUser,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	if err != nil {
		color.Red("Failed to sign token: %v", err)
		os.Exit(1)
	}
	return signed
}

func prettyPrint(raw []byte) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		fmt.Println(string(raw))
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func sendRequest(method, path, bearer string, body interface{}) (int, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL()+path, bodyReader)
	if err != nil {
		return 0, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	// generation waits on three LLM calls plus pacing
	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp.StatusCode, respBody, err
}

func step(title string, wantStatus int, method, path, bearer string, body interface{}) []byte {
	color.Yellow("\n%s", title)
	status, raw, err := sendRequest(method, path, bearer, body)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if status != wantStatus {
		color.Red("Status: %d (want %d)", status, wantStatus)
		prettyPrint(raw)
		os.Exit(1)
	}
	color.Green("Status: %d", status)
	prettyPrint(raw)
	return raw
}

func main() {
	color.Cyan("Starting FitAI planner smoke test against %s\n", baseURL())
	bearer := token()

	step("1. Health", http.StatusOK, "GET", "/", "", nil)

	raw := step("2. Generate plan", http.StatusOK, "POST", "/api/plan/v1/generate", bearer, map[string]string{
		"user_id": smokeUser,
		"profile": "32 years old, 78kg, 180cm, trains 3x per week, wants to lose 5kg of fat, lactose intolerant.",
	})

	var generated struct {
		Data struct {
			Id string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &generated); err != nil || generated.Data.Id == "" {
		color.Red("Generate response has no plan id")
		os.Exit(1)
	}

	step("3. Correct workout only", http.StatusOK, "POST", "/api/plan/v1/correct", bearer, map[string]string{
		"user_id":     smokeUser,
		"instruction": "Replace running with cycling because of a knee injury.",
		"plan_type":   "workout",
	})

	step("4. Reject unknown plan type", http.StatusBadRequest, "POST", "/api/plan/v1/correct", bearer, map[string]string{
		"user_id":     smokeUser,
		"instruction": "anything",
		"plan_type":   "sleep",
	})

	step("5. Show plan", http.StatusOK, "GET", "/api/plan/v1/"+generated.Data.Id, bearer, nil)
	step("6. List plans", http.StatusOK, "GET", "/api/plan/v1?user_id="+smokeUser+"&limit=5", bearer, nil)
	step("7. Delete plan", http.StatusOK, "DELETE", "/api/plan/v1/"+generated.Data.Id, bearer, nil)
	step("8. Plan is gone", http.StatusNotFound, "GET", "/api/plan/v1/"+generated.Data.Id, bearer, nil)

	color.Cyan("\nSmoke test passed")
}
