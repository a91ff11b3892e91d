package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// plan is one scheduler input replayed against both deployments.
type plan struct {
	Name     string `yaml:"name"`
	File     string `yaml:"file"`
	Critical bool   `yaml:"critical"`
}

type config struct {
	Plans []plan `yaml:"plans"`
}

type comparison struct {
	Plan              plan
	BaselineStatus    int
	CandidateStatus   int
	StatusMatch       bool
	GridMatch         bool
	UnscheduledDelta  int
	Error             error
	DurationBaseline  time.Duration
	DurationCandidate time.Duration
}

// Fields that differ on every run.
var volatileKeys = []string{"runId", "proposalId", "expiresAt"}

func main() {
	var (
		baselineBase  string
		candidateBase string
		plansPath     string
		token         string
		timeout       time.Duration
	)

	flag.StringVar(&baselineBase, "baseline", "http://localhost:8080/api/v1", "Baseline API base URL")
	flag.StringVar(&candidateBase, "candidate", "http://localhost:8081/api/v1", "Candidate API base URL")
	flag.StringVar(&plansPath, "plans", filepath.Join("scripts", "shadow_compare", "plans.yaml"), "Path to YAML plan list")
	flag.StringVar(&token, "token", os.Getenv("TIMETABLE_TOKEN"), "Bearer token with ADMIN role")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "HTTP client timeout")
	flag.Parse()

	plans, err := loadPlans(plansPath)
	if err != nil {
		log.Fatalf("failed to load plans: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var (
		comparisons  []comparison
		breaking     int
		optionalDiff int
	)

	for _, p := range plans {
		comp := comparePlan(client, baselineBase, candidateBase, token, p, filepath.Dir(plansPath))
		if comp.Error != nil || !comp.StatusMatch || !comp.GridMatch {
			if p.Critical {
				breaking++
			} else {
				optionalDiff++
			}
		}
		comparisons = append(comparisons, comp)
	}

	printReport(comparisons)

	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optionalDiff)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadPlans(path string) ([]plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Plans) == 0 {
		return nil, fmt.Errorf("no plans defined in %s", path)
	}
	return cfg.Plans, nil
}

func comparePlan(client *http.Client, baselineBase, candidateBase, token string, p plan, dir string) comparison {
	comp := comparison{Plan: p}

	file := p.File
	if !filepath.IsAbs(file) {
		file = filepath.Join(dir, file)
	}
	body, err := planBody(file)
	if err != nil {
		comp.Error = fmt.Errorf("plan %s: %w", p.Name, err)
		return comp
	}

	baseStatus, baseBody, baseDur, err := preview(client, baselineBase, token, body)
	if err != nil {
		comp.Error = fmt.Errorf("baseline request failed: %w", err)
		return comp
	}
	candStatus, candBody, candDur, err := preview(client, candidateBase, token, body)
	if err != nil {
		comp.Error = fmt.Errorf("candidate request failed: %w", err)
		return comp
	}

	comp.BaselineStatus = baseStatus
	comp.CandidateStatus = candStatus
	comp.DurationBaseline = baseDur
	comp.DurationCandidate = candDur
	comp.StatusMatch = baseStatus == candStatus

	baseData, err := envelopeData(baseBody)
	if err != nil {
		comp.Error = fmt.Errorf("baseline body: %w", err)
		return comp
	}
	candData, err := envelopeData(candBody)
	if err != nil {
		comp.Error = fmt.Errorf("candidate body: %w", err)
		return comp
	}

	comp.GridMatch = reflect.DeepEqual(baseData["timetable"], candData["timetable"])
	comp.UnscheduledDelta = listLen(candData["unscheduled"]) - listLen(baseData["unscheduled"])
	return comp
}

// planBody accepts YAML or JSON plans and returns the JSON request body.
func planBody(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return json.Marshal(raw)
}

func preview(client *http.Client, base, token string, body []byte) (int, []byte, time.Duration, error) {
	if client == nil {
		return 0, nil, 0, errors.New("nil client")
	}
	url := strings.TrimRight(base, "/") + "/timetables/preview"
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, err
	}
	return resp.StatusCode, payload, time.Since(start), nil
}

func envelopeData(body []byte) (map[string]interface{}, error) {
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == nil {
		return map[string]interface{}{}, nil
	}
	for _, key := range volatileKeys {
		delete(envelope.Data, key)
	}
	return envelope.Data, nil
}

func listLen(v interface{}) int {
	items, ok := v.([]interface{})
	if !ok {
		return 0
	}
	return len(items)
}

func printReport(results []comparison) {
	fmt.Println("Timetable Shadow Compare Report")
	fmt.Println("===============================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.StatusMatch || !res.GridMatch {
			status = "DIFF"
		}
		fmt.Printf("[%s] %s (%s)\n", status, res.Plan.Name, res.Plan.File)
		fmt.Printf("  Baseline Status: %d (%s)\n", res.BaselineStatus, res.DurationBaseline)
		fmt.Printf("  Candidate Status: %d (%s)\n", res.CandidateStatus, res.DurationCandidate)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
		} else {
			fmt.Printf("  Status match: %t | Grid match: %t | Unscheduled delta: %+d | Critical: %t\n",
				res.StatusMatch, res.GridMatch, res.UnscheduledDelta, res.Plan.Critical)
		}
	}
}
