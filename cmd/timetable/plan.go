package main

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
)

// loadPlan reads a generation request from a YAML or JSON file. Keys follow
// the HTTP payload, e.g. studentType and facultyName.
func loadPlan(path string) (dto.GenerateTimetableRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dto.GenerateTimetableRequest{}, fmt.Errorf("read plan: %w", err)
	}
	return decodePlan(data)
}

// decodePlan goes through YAML first so both formats share the JSON field
// names of the request DTO.
func decodePlan(data []byte) (dto.GenerateTimetableRequest, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return dto.GenerateTimetableRequest{}, fmt.Errorf("parse plan: %w", err)
	}
	if raw == nil {
		return dto.GenerateTimetableRequest{}, fmt.Errorf("plan is empty")
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return dto.GenerateTimetableRequest{}, fmt.Errorf("normalise plan: %w", err)
	}
	var req dto.GenerateTimetableRequest
	if err := json.Unmarshal(encoded, &req); err != nil {
		return dto.GenerateTimetableRequest{}, fmt.Errorf("decode plan: %w", err)
	}
	return req, nil
}
